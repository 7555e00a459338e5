package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
)

const (
	PDFContentType = "application/pdf"

	// S3 caps user-defined metadata at 2 KB.
	maxObjectMetadataBytes = 2048
)

var (
	ErrNoFile          = errors.New("no PDF file uploaded")
	ErrInvalidFileType = errors.New("only PDF files are allowed")
)

type UploadInput struct {
	OriginalName string
	ContentType  string
	Data         []byte
	// DeclaredType is the client's label ("Transcript", "Degree Audit").
	// Empty falls back to classifying by name.
	DeclaredType string
}

type UploadResult struct {
	Filename     string
	OriginalName string
	Path         string
	Size         int64
	StorageURL   string
	StorageKey   string
	// StorageErr is set when the local copy was kept but the object store write failed.
	StorageErr error
	ParsedData *models.ParsedDocument
	Document   models.UploadedDocument
}

type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
}

type uploadService struct {
	storage StorageService
	objects ObjectStore
	parser  DocumentParser
	now     func() time.Time
	log     *zap.Logger
}

// NewUploadService wires the upload pipeline. objects may be nil, in which
// case every upload reports a storage error and keeps only the local copy.
func NewUploadService(storage StorageService, objects ObjectStore, parser DocumentParser, log *zap.Logger) UploadService {
	return &uploadService{
		storage: storage,
		objects: objects,
		parser:  parser,
		now:     time.Now,
		log:     log,
	}
}

func (u *uploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.OriginalName == "" {
		return nil, ErrNoFile
	}
	if in.ContentType != PDFContentType {
		return nil, ErrInvalidFileType
	}

	now := u.now()

	filename, filePath, err := u.storage.SaveFile(in.OriginalName, in.Data, now)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload locally: %w", err)
	}
	u.log.Info("📄 PDF stored locally", zap.String("filename", filename), zap.Int("bytes", len(in.Data)))

	parsed := u.parser.Parse(in.OriginalName)

	result := &UploadResult{
		Filename:     filename,
		OriginalName: in.OriginalName,
		Path:         filePath,
		Size:         int64(len(in.Data)),
		ParsedData:   parsed,
	}

	// The remote key follows the local name so same-millisecond uploads stay distinct.
	key := "pdfs/" + filename
	storageURL, err := u.putObject(ctx, key, in, parsed, now)
	if err != nil {
		u.log.Warn("⚠️ Object storage upload failed, keeping local copy",
			zap.String("key", key),
			zap.Error(err),
		)
		result.StorageErr = err
	} else {
		result.StorageURL = storageURL
		result.StorageKey = key
	}

	docType := u.parser.Classify(in.OriginalName)
	if in.DeclaredType != "" {
		docType = models.ParseDocumentType(in.DeclaredType)
	}

	result.Document = models.UploadedDocument{
		Name:       in.OriginalName,
		URL:        "/uploads/" + filename,
		StorageURL: result.StorageURL,
		StorageKey: result.StorageKey,
		Type:       docType,
		UploadDate: now.UTC(),
		ParsedData: parsed,
	}

	return result, nil
}

func (u *uploadService) putObject(ctx context.Context, key string, in UploadInput, parsed *models.ParsedDocument, now time.Time) (string, error) {
	if u.objects == nil {
		return "", ErrStorageNotConfigured
	}

	metadata := map[string]string{
		"originalName": in.OriginalName,
		"uploadDate":   now.UTC().Format(time.RFC3339Nano),
		"parsedData":   "",
	}

	if parsed != nil {
		parsedJSON, err := json.Marshal(parsed)
		if err != nil {
			return "", fmt.Errorf("failed to encode parsed data: %w", err)
		}

		metadata["parsedData"] = string(parsedJSON)
		if metadataSize(metadata) > maxObjectMetadataBytes {
			sidecarKey := key + ".json"
			if _, err := u.objects.Put(ctx, sidecarKey, parsedJSON, "application/json", nil); err != nil {
				return "", err
			}
			delete(metadata, "parsedData")
			metadata["parsedDataKey"] = sidecarKey
		}
	}

	return u.objects.Put(ctx, key, in.Data, PDFContentType, metadata)
}

func metadataSize(m map[string]string) int {
	n := 0
	for k, v := range m {
		n += len(k) + len(v)
	}
	return n
}
