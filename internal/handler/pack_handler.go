package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
	"github.com/noah-isme/chatty-edu-api/internal/service"
	"github.com/noah-isme/chatty-edu-api/internal/utils"
)

// PackHandler exposes homework pack endpoints.
type PackHandler struct {
	service service.PackService
	logger  zerolog.Logger
}

// NewPackHandler constructs a pack handler.
func NewPackHandler(service service.PackService, logger zerolog.Logger) *PackHandler {
	return &PackHandler{
		service: service,
		logger:  logger.With().Str("component", "pack_handler").Logger(),
	}
}

// RegisterStudent attaches the read-only pack route.
func (h *PackHandler) RegisterStudent(router fiber.Router) {
	router.Get("/packs/latest", h.latest)
}

// RegisterTeacher attaches pack authoring routes.
func (h *PackHandler) RegisterTeacher(router fiber.Router) {
	router.Post("/packs", h.create)
	router.Post("/packs/template", h.template)
	router.Post("/packs/import", h.importPack)
}

func (h *PackHandler) latest(c *fiber.Ctx) error {
	pack, err := h.service.Latest(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "homework pack retrieved", pack)
}

func (h *PackHandler) create(c *fiber.Ctx) error {
	var payload dto.PackCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pack, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "homework pack created", pack)
}

func (h *PackHandler) template(c *fiber.Ctx) error {
	var payload dto.PackTemplateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	pack, err := h.service.Template(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "homework pack template exported", pack)
}

func (h *PackHandler) importPack(c *fiber.Ctx) error {
	var payload dto.PackImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pack, err := h.service.Import(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "homework pack imported", pack)
}

func (h *PackHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, service.ErrInvalidPack), errors.Is(err, repository.ErrInvalidIdentifier):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoPack):
		return utils.SendError(c, fiber.StatusNotFound, "no homework pack available")
	case errors.Is(err, repository.ErrPackNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "homework pack not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
