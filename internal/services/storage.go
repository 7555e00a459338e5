package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidFilename = errors.New("invalid filename")
	ErrFileNotFound    = errors.New("file not found")
)

type StoredFile struct {
	Filename string
	Path     string
}

// StorageService keeps uploaded PDFs on local disk.
type StorageService interface {
	EnsureUploadDir() error
	// SaveFile writes data as "<unix millis>-<name>" and returns the stored
	// filename and its path.
	SaveFile(originalName string, data []byte, at time.Time) (string, string, error)
	ListPDFs() ([]StoredFile, error)
	// Locate resolves a stored filename to its path, or ErrFileNotFound.
	Locate(filename string) (string, error)
	UploadPath() string
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) UploadPath() string {
	return s.uploadPath
}

func (s *storageService) SaveFile(originalName string, data []byte, at time.Time) (string, string, error) {
	base, err := cleanFilename(originalName)
	if err != nil {
		return "", "", err
	}

	if err := s.EnsureUploadDir(); err != nil {
		return "", "", err
	}

	// Same-millisecond uploads of the same name move to the next free millisecond.
	stamp := at.UnixMilli()
	for attempt := 0; attempt < 100; attempt++ {
		filename := fmt.Sprintf("%d-%s", stamp+int64(attempt), base)
		filePath := filepath.Join(s.uploadPath, filename)

		dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("failed to create destination file: %w", err)
		}

		if _, err := dst.Write(data); err != nil {
			dst.Close()
			os.Remove(filePath)
			return "", "", fmt.Errorf("failed to save file: %w", err)
		}
		if err := dst.Close(); err != nil {
			os.Remove(filePath)
			return "", "", fmt.Errorf("failed to save file: %w", err)
		}

		return filename, filePath, nil
	}

	return "", "", fmt.Errorf("failed to find a free filename for %s", base)
}

func (s *storageService) ListPDFs() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.uploadPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []StoredFile{}, nil
		}
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		files = append(files, StoredFile{
			Filename: e.Name(),
			Path:     filepath.Join(s.uploadPath, e.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}

func (s *storageService) Locate(filename string) (string, error) {
	if filepath.Base(filename) != filename || filename == "." || filename == ".." {
		return "", ErrInvalidFilename
	}

	filePath := filepath.Join(s.uploadPath, filename)
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", ErrFileNotFound
	}

	return filePath, nil
}

func cleanFilename(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", ErrInvalidFilename
	}
	return base, nil
}
