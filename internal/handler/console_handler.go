package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/service"
	"github.com/noah-isme/chatty-edu-api/internal/utils"
)

// ConsoleHandler exposes the teacher console switches.
type ConsoleHandler struct {
	service service.ConsoleService
	logger  zerolog.Logger
}

// NewConsoleHandler constructs a console handler.
func NewConsoleHandler(service service.ConsoleService, logger zerolog.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		service: service,
		logger:  logger.With().Str("component", "console_handler").Logger(),
	}
}

// RegisterStudent attaches the game gate the student shell asks before playing.
func (h *ConsoleHandler) RegisterStudent(router fiber.Router) {
	router.Get("/play", h.playPolicy)
}

// RegisterTeacher attaches the console routes.
func (h *ConsoleHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/console", h.status)
	router.Put("/mode", h.setMode)
	router.Put("/games", h.setGames)
	router.Put("/secret", h.setSecret)
}

func (h *ConsoleHandler) status(c *fiber.Ctx) error {
	status, err := h.service.Status(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher console", status)
}

func (h *ConsoleHandler) setMode(c *fiber.Ctx) error {
	var payload dto.TeacherModeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	status, err := h.service.SetMode(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher mode changed", status)
}

func (h *ConsoleHandler) setGames(c *fiber.Ctx) error {
	var payload dto.GamePolicyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	status, err := h.service.SetGames(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "game policy changed", status)
}

func (h *ConsoleHandler) setSecret(c *fiber.Ctx) error {
	var payload dto.SetSecretRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SetSecret(c.UserContext(), payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "secret question changed", nil)
}

func (h *ConsoleHandler) playPolicy(c *fiber.Ctx) error {
	policy, err := h.service.PlayPolicy(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "play policy", policy)
}

func (h *ConsoleHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, service.ErrEmptyGamePolicy), errors.Is(err, service.ErrBlankSecret):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
