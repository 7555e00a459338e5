package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
	log            *zap.Logger
}

func NewProfileHandler(profileService services.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

// HandleGet handles GET /api/users/:id
func (h *ProfileHandler) HandleGet(c *fiber.Ctx) error {
	profile, err := h.profileService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Profile not found")
	}

	return c.JSON(profile)
}

// HandlePut handles PUT /api/users/:id
func (h *ProfileHandler) HandlePut(c *fiber.Ctx) error {
	var req models.PutProfileRequest
	if err := c.BodyParser(&req); err != nil || req.Profile == nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	profile, err := h.profileService.Put(c.UserContext(), c.Params("id"), *req.Profile)
	if err != nil {
		return h.fail(c, err, "")
	}

	return c.JSON(profile)
}

// HandleSignIn handles POST /api/users/:id/signin
func (h *ProfileHandler) HandleSignIn(c *fiber.Ctx) error {
	var req models.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	if strings.TrimSpace(req.Email) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "email is required")
	}

	profile, err := h.profileService.SignIn(c.UserContext(), c.Params("id"), req.Name, req.Email)
	if err != nil {
		return h.fail(c, err, "")
	}

	return c.JSON(profile)
}

// fail renders err with its mapped status. notFound overrides the message
// for 404s when set.
func (h *ProfileHandler) fail(c *fiber.Ctx, err error, notFound string) error {
	status := statusFor(err)
	switch {
	case status == fiber.StatusNotFound && notFound != "":
		return errorJSON(c, status, notFound)
	case status >= fiber.StatusInternalServerError:
		h.log.Error("❌ Profile request failed", zap.String("user_id", c.Params("id")), zap.Error(err))
		return errorJSON(c, status, "Failed to process profile request")
	}
	return errorJSON(c, status, err.Error())
}
