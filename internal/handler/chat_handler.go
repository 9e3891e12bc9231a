package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/service"
	"github.com/noah-isme/chatty-edu-api/internal/utils"
)

// ChatHandler answers student questions.
type ChatHandler struct {
	service service.ChatService
	limiter fiber.Handler
	logger  zerolog.Logger
}

// NewChatHandler constructs a chat handler. limiter may be nil.
func NewChatHandler(service service.ChatService, limiter fiber.Handler, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		limiter: limiter,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register attaches chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	if h.limiter != nil {
		router.Post("/chat", h.limiter, h.ask)
		return
	}
	router.Post("/chat", h.ask)
}

func (h *ChatHandler) ask(c *fiber.Ctx) error {
	var payload dto.ChatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.service.Ask(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "reply generated", reply)
}
