package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"huskytrack/advisor/internal/repositories"
	"huskytrack/advisor/internal/services"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrProfileNotFound),
		errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrFileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrMissingPrompt),
		errors.Is(err, services.ErrInvalidRequestBody),
		errors.Is(err, services.ErrInvalidFilename),
		errors.Is(err, services.ErrInvalidFileType),
		errors.Is(err, services.ErrNoFile):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrEmailDomainNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, repositories.ErrVersionConflict),
		errors.Is(err, repositories.ErrProfileExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrWriterStopped):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
