package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/service"
	"github.com/noah-isme/chatty-edu-api/internal/utils"
)

// AuthHandler manages the teacher session.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic attaches the login and forgotten PIN routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/session", h.login)
	router.Get("/recovery", h.secretQuestion)
	router.Post("/recovery", h.recover)
}

// RegisterTeacher attaches routes that need a teacher session.
func (h *AuthHandler) RegisterTeacher(router fiber.Router) {
	router.Put("/pin", h.changePIN)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.TeacherLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher session started", session)
}

func (h *AuthHandler) secretQuestion(c *fiber.Ctx) error {
	question, err := h.service.SecretQuestion(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "secret question", question)
}

func (h *AuthHandler) recover(c *fiber.Ctx) error {
	var payload dto.SecretRecoveryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Recover(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher session started", session)
}

func (h *AuthHandler) changePIN(c *fiber.Ctx) error {
	var payload dto.ChangePINRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ChangePIN(c.UserContext(), payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "teacher pin changed", nil)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, service.ErrInvalidPIN):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid pin")
	case errors.Is(err, service.ErrInvalidSecretAnswer):
		return utils.SendError(c, fiber.StatusUnauthorized, "incorrect secret answer")
	case errors.Is(err, service.ErrSecretNotSet):
		return utils.SendError(c, fiber.StatusNotFound, "secret question not set")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
