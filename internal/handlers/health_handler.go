package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/services"
)

type HealthHandler struct {
	identity services.IdentityChecker
	region   string
	log      *zap.Logger
}

// NewHealthHandler takes an optional identity checker; without one the AWS
// check reports a failure.
func NewHealthHandler(identity services.IdentityChecker, region string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		identity: identity,
		region:   region,
		log:      log,
	}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": "Server is working properly",
	})
}

// HandleAWSTest handles GET /api/aws-test
func (h *HealthHandler) HandleAWSTest(c *fiber.Ctx) error {
	if h.identity == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "AWS credential check failed",
			"message": services.ErrStorageNotConfigured.Error(),
			"region":  h.region,
		})
	}

	id, err := h.identity.CallerIdentity(c.UserContext())
	if err != nil {
		h.log.Warn("⚠️ AWS credential check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "AWS credential check failed",
			"message": err.Error(),
			"region":  h.region,
		})
	}

	userID := "unknown"
	if id.UserID != "" {
		userID = strings.SplitN(id.UserID, ":", 2)[0]
	}

	return c.JSON(models.IdentityResponse{
		Account: id.Account,
		UserID:  userID,
		ARN:     id.ARN,
		Region:  id.Region,
	})
}
