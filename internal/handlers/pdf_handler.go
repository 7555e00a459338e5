package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/services"
)

const noTextLayerNotice = "No text layer found in this PDF."

type PDFHandler struct {
	storage   services.StorageService
	parser    services.DocumentParser
	extractor services.PDFTextExtractor
	log       *zap.Logger
}

func NewPDFHandler(
	storage services.StorageService,
	parser services.DocumentParser,
	extractor services.PDFTextExtractor,
	log *zap.Logger,
) *PDFHandler {
	return &PDFHandler{
		storage:   storage,
		parser:    parser,
		extractor: extractor,
		log:       log,
	}
}

// HandleList handles GET /pdfs
func (h *PDFHandler) HandleList(c *fiber.Ctx) error {
	files, err := h.storage.ListPDFs()
	if err != nil {
		h.log.Error("❌ Error listing PDFs", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list PDFs")
	}

	pdfs := make([]models.PDFEntry, 0, len(files))
	for _, f := range files {
		pdfs = append(pdfs, models.PDFEntry{
			Filename: f.Filename,
			Path:     f.Path,
			URL:      "/uploads/" + f.Filename,
		})
	}

	return c.JSON(models.PDFListResponse{PDFs: pdfs})
}

// HandleGet handles GET /pdf/:filename
func (h *PDFHandler) HandleGet(c *fiber.Ctx) error {
	filename := c.Params("filename")
	path, ok, err := h.locate(c, filename)
	if !ok {
		return err
	}

	return c.JSON(models.PDFInfoResponse{
		Message:  fmt.Sprintf("PDF %s found", filename),
		Filename: filename,
		Path:     path,
		URL:      "/uploads/" + filename,
	})
}

// HandleTranscript handles GET /transcript/:filename
func (h *PDFHandler) HandleTranscript(c *fiber.Ctx) error {
	filename := c.Params("filename")
	path, ok, err := h.locate(c, filename)
	if !ok {
		return err
	}

	data := h.parser.ParseTranscript(path)
	if data == nil {
		return errorJSON(c, fiber.StatusBadRequest, "Could not parse transcript data")
	}

	return c.JSON(models.TranscriptResponse{
		Message:        fmt.Sprintf("Transcript data for %s", filename),
		Filename:       filename,
		TranscriptData: data,
	})
}

// HandleDebug handles GET /debug-pdf/:filename
func (h *PDFHandler) HandleDebug(c *fiber.Ctx) error {
	filename := c.Params("filename")
	path, ok, err := h.locate(c, filename)
	if !ok {
		return err
	}

	resp := models.DebugPDFResponse{
		Message:            fmt.Sprintf("PDF text for %s", filename),
		Filename:           filename,
		MockTranscriptData: h.parser.ParseTranscript(path),
	}

	content, err := h.extractor.Extract(path)
	switch {
	case errors.Is(err, services.ErrNoTextLayer):
		resp.Text = noTextLayerNotice
		resp.PageCount = content.PageCount
	case err != nil:
		h.log.Error("❌ Error extracting PDF text", zap.String("file", filename), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get PDF text")
	default:
		resp.Text = content.Text
		resp.PageCount = content.PageCount
	}

	return c.JSON(resp)
}

// locate resolves filename to a path. When ok is false the error response
// has already been written and err is what the handler should return.
func (h *PDFHandler) locate(c *fiber.Ctx, filename string) (path string, ok bool, err error) {
	path, err = h.storage.Locate(filename)
	if err == nil {
		return path, true, nil
	}

	switch {
	case errors.Is(err, services.ErrFileNotFound):
		return "", false, errorJSON(c, fiber.StatusNotFound, "PDF not found")
	case errors.Is(err, services.ErrInvalidFilename):
		return "", false, errorJSON(c, fiber.StatusBadRequest, "Invalid file name")
	}
	h.log.Error("❌ Error locating PDF", zap.String("file", filename), zap.Error(err))
	return "", false, errorJSON(c, fiber.StatusInternalServerError, "Failed to get PDF")
}
