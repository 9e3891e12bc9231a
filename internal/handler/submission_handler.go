package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/integrity"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
	"github.com/noah-isme/chatty-edu-api/internal/service"
	"github.com/noah-isme/chatty-edu-api/internal/utils"
)

// SubmissionHandler serves homework export for students and the teacher's
// submission views.
type SubmissionHandler struct {
	submissions service.SubmissionService
	dashboard   service.DashboardService
	logger      zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(submissions service.SubmissionService, dashboard service.DashboardService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		dashboard:   dashboard,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterStudent attaches the export route.
func (h *SubmissionHandler) RegisterStudent(router fiber.Router) {
	router.Post("/submissions", h.export)
}

// RegisterTeacher attaches the dashboard and verification routes.
func (h *SubmissionHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/submissions", h.list)
	router.Post("/submissions/reindex", h.reindex)
	router.Get("/submissions/:assignment_id/:student_id/verify", h.verify)
}

func (h *SubmissionHandler) export(c *fiber.Ctx) error {
	var payload dto.SubmissionExportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.submissions.Export(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	message := "submission exported"
	if result.Replaced {
		message = "submission exported, replacing an earlier export"
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, message, result)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	var filter dto.SubmissionSummaryFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	rows, err := h.dashboard.Summaries(c.UserContext(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", rows)
}

func (h *SubmissionHandler) verify(c *fiber.Ctx) error {
	result, err := h.submissions.Verify(c.UserContext(), c.Params("assignment_id"), c.Params("student_id"))
	if err != nil {
		var integrityErr *integrity.IntegrityError
		if errors.As(err, &integrityErr) {
			if errors.Is(err, integrity.ErrEmptyChain) {
				return utils.SendErrorWithData(c, fiber.StatusConflict, "submission cannot be verified", result)
			}
			return utils.SendErrorWithData(c, fiber.StatusConflict, "submission looks altered", result)
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission intact", result)
}

func (h *SubmissionHandler) reindex(c *fiber.Ctx) error {
	result, err := h.submissions.Reindex(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions reindexed", result)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	case errors.Is(err, repository.ErrInvalidIdentifier):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAttachmentNotFound), errors.Is(err, service.ErrAttachmentType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, repository.ErrSubmissionExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
