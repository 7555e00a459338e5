package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/services"
)

type UploadHandler struct {
	uploadService  services.UploadService
	profileService services.ProfileService
	maxFileSize    int64
	log            *zap.Logger
}

func NewUploadHandler(
	uploadService services.UploadService,
	profileService services.ProfileService,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		uploadService:  uploadService,
		profileService: profileService,
		maxFileSize:    maxFileSize,
		log:            log,
	}
}

// HandleUpload handles POST /upload/pdf
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No PDF file uploaded")
	}

	if fileHeader.Header.Get("Content-Type") != services.PDFContentType {
		return errorJSON(c, fiber.StatusBadRequest, "Only PDF files are allowed")
	}

	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("PDF file too large. Max size: %d bytes", h.maxFileSize))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Failed to read uploaded file")
	}

	result, err := h.uploadService.Upload(c.UserContext(), services.UploadInput{
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Data:         data,
		DeclaredType: c.FormValue("type"),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFileType):
			return errorJSON(c, fiber.StatusBadRequest, "Only PDF files are allowed")
		case errors.Is(err, services.ErrNoFile):
			return errorJSON(c, fiber.StatusBadRequest, "No PDF file uploaded")
		case errors.Is(err, services.ErrInvalidFilename):
			return errorJSON(c, fiber.StatusBadRequest, "Invalid file name")
		}
		h.log.Error("❌ Upload failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to upload PDF")
	}

	resp := models.UploadResponse{
		Message:      "PDF uploaded successfully",
		Filename:     result.Filename,
		OriginalName: result.OriginalName,
		FileSize:     result.Size,
		Path:         result.Path,
		S3URL:        result.StorageURL,
		S3Key:        result.StorageKey,
		ParsedData:   result.ParsedData,
	}
	if result.StorageErr != nil {
		resp.Message = "PDF uploaded locally (S3 upload failed)"
		resp.Error = result.StorageErr.Error()
	}

	if userID := strings.TrimSpace(c.FormValue("userId")); userID != "" {
		profile, err := h.profileService.RecordUpload(c.UserContext(), userID, result.Document)
		if err != nil {
			h.log.Warn("⚠️ Could not merge upload into profile", zap.String("user_id", userID), zap.Error(err))
			resp.ProfileError = err.Error()
		} else {
			resp.Profile = profile
		}
	}

	return c.JSON(resp)
}
