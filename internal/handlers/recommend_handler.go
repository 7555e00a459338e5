package handlers

import (
	"github.com/gofiber/fiber/v2"

	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/services"
)

type RecommendHandler struct {
	recommender services.Recommender
}

func NewRecommendHandler(recommender services.Recommender) *RecommendHandler {
	return &RecommendHandler{
		recommender: recommender,
	}
}

// HandleRecommend handles POST /api/recommend. The request body is the
// function event's body; the function response's status and body are
// written through unchanged.
func (h *RecommendHandler) HandleRecommend(c *fiber.Ctx) error {
	body := c.Body()
	// Body() is only valid for the life of the handler.
	raw := make([]byte, len(body))
	copy(raw, body)

	resp := h.recommender.HandleEvent(c.UserContext(), models.FunctionEvent{Body: raw})

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(resp.StatusCode).SendString(resp.Body)
}
