package handlers

import (
	"bufio"
	"context"

	"purchase-control/internal/dto"
	"purchase-control/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chat     ChatService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewChatHandler(chat ChatService, validate *validator.Validate, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:     chat,
		validate: validate,
		logger:   logger,
	}
}

// Validate godoc
// @Summary Validation chat
// @Description Stream an assistant reply that walks the user through the extracted receipt
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param request body dto.ChatRequest true "Conversation and extraction"
// @Success 200 {string} string "data: {\"content\": \"...\"} frames, ending with data: [DONE]"
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/chat/validate [post]
func (h *ChatHandler) Validate(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "Dados OCR não fornecidos")
	}

	// The body is written after this handler returns, so the upstream
	// request cannot live on the request context.
	ctx, cancel := context.WithCancel(context.Background())
	upstream, err := h.chat.Open(ctx, &req)
	if err != nil {
		cancel()
		return respondError(c, h.logger, err, service.MsgChatFailed)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer upstream.Close()

		if err := h.chat.Relay(upstream, w); err != nil {
			h.logger.Info("Chat client disconnected", zap.Error(err))
		}
	})
	return nil
}
