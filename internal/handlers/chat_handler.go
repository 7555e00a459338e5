package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/services"
)

// AdvisorSender is the sender name on advisor replies.
const AdvisorSender = "HuskyBot"

type ChatHandler struct {
	profileService services.ProfileService
	recommender    services.Recommender
	log            *zap.Logger
}

func NewChatHandler(profileService services.ProfileService, recommender services.Recommender, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		profileService: profileService,
		recommender:    recommender,
		log:            log,
	}
}

// HandleStart handles POST /api/users/:id/chats
func (h *ChatHandler) HandleStart(c *fiber.Ctx) error {
	chat, err := h.profileService.StartChat(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(chat)
}

// HandleSend handles POST /api/users/:id/chats/:chatId/messages
//
// The question is saved before the advisor runs. If the advisor fails the
// question stays in the chat without a reply and the request fails; a retry
// appends the question again.
func (h *ChatHandler) HandleSend(c *fiber.Ctx) error {
	userID := c.Params("id")
	chatID, err := strconv.Atoi(c.Params("chatId"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid chat id")
	}

	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.Text) == "" {
		return errorJSON(c, fiber.StatusBadRequest, services.ErrMissingPrompt.Error())
	}

	ctx := c.UserContext()

	chat, msg, err := h.profileService.AppendMessage(ctx, userID, chatID, req.Text, "")
	if err != nil {
		return h.fail(c, err)
	}

	profile, err := h.profileService.Get(ctx, userID)
	if err != nil {
		return h.fail(c, err)
	}

	// The new message is the question; everything before it is history.
	history := chat.Messages[:len(chat.Messages)-1]

	rec, err := h.recommender.Recommend(ctx, services.RecommendInput{
		Prompt:  req.Text,
		History: history,
		Profile: *profile,
	})
	if err != nil {
		return h.fail(c, err)
	}

	chat, reply, err := h.profileService.AppendMessage(ctx, userID, chatID, rec.Text, AdvisorSender)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(models.SendMessageResponse{
		Chat:    chat,
		Message: msg,
		Reply:   &reply,
	})
}

func (h *ChatHandler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error("❌ Chat request failed", zap.String("user_id", c.Params("id")), zap.Error(err))
	}
	return errorJSON(c, status, err.Error())
}
