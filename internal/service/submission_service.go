package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/integrity"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/observability"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

// SubmissionService exports homework and checks exported files.
type SubmissionService interface {
	Export(ctx context.Context, request dto.SubmissionExportRequest) (dto.SubmissionExportResponse, error)
	Verify(ctx context.Context, assignmentID, studentID string) (dto.VerificationResponse, error)
	Reindex(ctx context.Context) (dto.ReindexResponse, error)
}

// SubmissionServiceDeps groups the collaborators of the submission service.
type SubmissionServiceDeps struct {
	Store     repository.SubmissionStore
	Index     repository.SubmissionIndexRepository
	Packs     repository.PackStore
	Settings  repository.SettingsStore
	Cache     *DashboardCache
	Notifier  *Notifier
	Validator *validator.Validate
	Logger    zerolog.Logger
}

type submissionService struct {
	store     repository.SubmissionStore
	index     repository.SubmissionIndexRepository
	packs     repository.PackStore
	settings  repository.SettingsStore
	cache     *DashboardCache
	notifier  *Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSubmissionService wires the export and verification flow.
func NewSubmissionService(deps SubmissionServiceDeps) SubmissionService {
	validate := deps.Validator
	if validate == nil {
		validate = validator.New()
	}

	return &submissionService{
		store:     deps.Store,
		index:     deps.Index,
		packs:     deps.Packs,
		settings:  deps.Settings,
		cache:     deps.Cache,
		notifier:  deps.Notifier,
		validator: validate,
		logger:    deps.Logger.With().Str("component", "submission_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/chatty-edu-api/internal/service/submission"),
		now:       time.Now,
	}
}

func (s *submissionService) Export(ctx context.Context, request dto.SubmissionExportRequest) (dto.SubmissionExportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.export", trace.WithAttributes(
		attribute.String("submission.assignment_id", request.AssignmentID),
	))
	defer span.End()

	response, err := s.export(ctx, request)
	if err != nil {
		result := "failed"
		if errors.Is(err, repository.ErrSubmissionExists) || isValidation(err) ||
			errors.Is(err, ErrAttachmentNotFound) || errors.Is(err, ErrAttachmentType) {
			result = "rejected"
		}
		observability.SubmissionsExported().WithLabelValues(result).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.SubmissionExportResponse{}, err
	}

	observability.SubmissionsExported().WithLabelValues("ok").Inc()
	return response, nil
}

func (s *submissionService) export(ctx context.Context, request dto.SubmissionExportRequest) (dto.SubmissionExportResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.SubmissionExportResponse{}, err
	}

	settings, err := s.settings.LoadOrInit(ctx)
	if err != nil {
		return dto.SubmissionExportResponse{}, fmt.Errorf("failed to load settings: %w", err)
	}

	attachments, err := checkAttachments(request.Attachments)
	if err != nil {
		return dto.SubmissionExportResponse{}, err
	}

	studentID, studentName, classID := settings.Student.Identity()
	identity := models.SubmissionIdentity{
		SchoolID:     models.DefaultSchoolID,
		ClassID:      classID,
		AssignmentID: request.AssignmentID,
		StudentID:    studentID,
		StudentName:  studentName,
	}

	var premark *models.Premark
	assignment, pack, found := s.lookupAssignment(ctx, request.AssignmentID)
	if found && pack.SchoolID != "" {
		identity.SchoolID = pack.SchoolID
	}
	if !found || assignment.AllowAIPremark {
		value := Premark(request.AnswersText)
		premark = &value
	}

	record := integrity.BuildRecord(s.now, integrity.RecordInput{
		Identity:    identity,
		AnswersText: request.AnswersText,
		Attachments: attachments,
		Premark:     premark,
	})

	saved, err := s.store.Save(ctx, record)
	if err != nil {
		return dto.SubmissionExportResponse{}, err
	}

	logger := s.logger.With().
		Str("assignment_id", record.AssignmentID).
		Str("student_id", record.StudentID).
		Str("path", saved.Path).
		Logger()

	if saved.Replaced {
		observability.SubmissionOverwrites().Inc()
		logger.Warn().Msg("submission replaced an earlier export")
	}

	entry := indexEntry(record, saved.Path)
	if err := s.index.Upsert(ctx, &entry, saved.Replaced); err != nil {
		logger.Warn().Err(err).Msg("failed to index exported submission")
	}

	s.cache.Invalidate(ctx)

	summary := repository.Summarize(record)
	s.notifier.Notify(ctx, SubmissionNotification{
		Event:     SubmissionExportedEvent,
		Summary:   summary,
		ClassID:   record.ClassID,
		FinalHash: record.FinalHash,
		Replaced:  saved.Replaced,
		SentAt:    s.now().UTC(),
	})

	logger.Info().Str("final_hash", record.FinalHash).Msg("submission exported")

	return dto.SubmissionExportResponse{
		Path:      saved.Path,
		FinalHash: record.FinalHash,
		Replaced:  saved.Replaced,
		Events:    len(record.Events),
		Summary:   summary,
	}, nil
}

// lookupAssignment finds the assignment in the newest pack. Pack errors are
// logged and treated as "not found".
func (s *submissionService) lookupAssignment(ctx context.Context, assignmentID string) (models.HomeworkAssignment, models.HomeworkPack, bool) {
	if s.packs == nil {
		return models.HomeworkAssignment{}, models.HomeworkPack{}, false
	}

	latest, ok, err := s.packs.Latest(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read latest homework pack")
		return models.HomeworkAssignment{}, models.HomeworkPack{}, false
	}
	if !ok {
		return models.HomeworkAssignment{}, models.HomeworkPack{}, false
	}

	assignment, found := latest.Pack.Assignment(assignmentID)
	return assignment, latest.Pack, found
}

func (s *submissionService) Verify(ctx context.Context, assignmentID, studentID string) (dto.VerificationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.verify", trace.WithAttributes(
		attribute.String("submission.assignment_id", assignmentID),
		attribute.String("submission.student_id", studentID),
	))
	defer span.End()

	path, err := s.store.PathFor(assignmentID, studentID)
	if err != nil {
		return dto.VerificationResponse{}, err
	}

	record, err := s.store.Load(ctx, assignmentID, studentID)
	if err != nil {
		return dto.VerificationResponse{}, err
	}

	response, verifyErr := s.verifyRecord(ctx, record, path)
	if verifyErr != nil {
		span.SetStatus(codes.Error, verifyErr.Error())
	}
	s.cache.Invalidate(ctx)

	return response, verifyErr
}

// verifyRecord checks the chain and records the outcome in the index. The
// integrity error, if any, is returned alongside a filled response.
func (s *submissionService) verifyRecord(ctx context.Context, record models.SubmissionRecord, path string) (dto.VerificationResponse, error) {
	verifiedAt := s.now().UTC()
	verifyErr := integrity.Verify(record)

	response := dto.VerificationResponse{
		AssignmentID: record.AssignmentID,
		StudentID:    record.StudentID,
		Status:       models.IntegrityIntact,
		FinalHash:    record.FinalHash,
		Events:       len(record.Events),
		VerifiedAt:   verifiedAt,
	}

	entry := indexEntry(record, path)
	entry.IntegrityStatus = models.IntegrityIntact
	entry.VerifiedAt = &verifiedAt

	if verifyErr != nil {
		kind := integrity.KindName(verifyErr)
		status := models.IntegrityAltered
		if errors.Is(verifyErr, integrity.ErrEmptyChain) {
			status = models.IntegrityUnverifiable
		}
		response.Status = status
		response.Failure = kind
		response.Detail = verifyErr.Error()

		var integrityErr *integrity.IntegrityError
		if errors.As(verifyErr, &integrityErr) && errors.Is(verifyErr, integrity.ErrHashMismatch) {
			index := integrityErr.Index
			response.EventIndex = &index
		}

		entry.IntegrityStatus = status
		entry.IntegrityDetail = verifyErr.Error()

		observability.IntegrityFailures().WithLabelValues(kind).Inc()
		s.logger.Warn().
			Err(verifyErr).
			Str("assignment_id", record.AssignmentID).
			Str("student_id", record.StudentID).
			Str("kind", kind).
			Msg("submission failed integrity check")
	}

	if err := s.recordVerification(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record verification result")
	}

	return response, verifyErr
}

// recordVerification updates only the integrity columns when the index row
// already describes this file, and rewrites the whole row otherwise.
func (s *submissionService) recordVerification(ctx context.Context, entry *models.SubmissionIndex) error {
	current, err := s.index.Get(ctx, entry.AssignmentID, entry.StudentID)
	if err == nil && current.FinalHash == entry.FinalHash && current.FilePath == entry.FilePath {
		return s.index.MarkVerification(ctx, entry.AssignmentID, entry.StudentID, entry.IntegrityStatus, entry.IntegrityDetail, *entry.VerifiedAt)
	}
	return s.index.Upsert(ctx, entry, false)
}

func (s *submissionService) Reindex(ctx context.Context) (dto.ReindexResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.reindex")
	defer span.End()

	scan, err := s.store.Scan(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.ReindexResponse{}, err
	}

	response := dto.ReindexResponse{Skipped: len(scan.Skipped)}
	for _, record := range scan.Records {
		path, err := s.store.PathFor(record.AssignmentID, record.StudentID)
		if err != nil {
			s.logger.Warn().Err(err).Str("assignment_id", record.AssignmentID).Msg("skipping unindexable submission")
			response.Skipped++
			continue
		}

		result, verifyErr := s.verifyRecord(ctx, record, path)
		if verifyErr != nil && !isIntegrityFailure(verifyErr) {
			return dto.ReindexResponse{}, verifyErr
		}

		response.Indexed++
		switch result.Status {
		case models.IntegrityIntact:
			response.Intact++
		case models.IntegrityUnverifiable:
			response.Unverifiable++
		default:
			response.Altered++
		}
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().
		Int("indexed", response.Indexed).
		Int("altered", response.Altered).
		Int("skipped", response.Skipped).
		Msg("submission index rebuilt")

	return response, nil
}

func indexEntry(record models.SubmissionRecord, path string) models.SubmissionIndex {
	attachments, err := json.Marshal(record.Attachments)
	if err != nil || record.Attachments == nil {
		attachments = []byte("[]")
	}

	entry := models.SubmissionIndex{
		AssignmentID:    record.AssignmentID,
		StudentID:       record.StudentID,
		StudentName:     record.StudentName,
		ClassID:         record.ClassID,
		Score:           record.Score(),
		FinalHash:       record.FinalHash,
		FilePath:        path,
		SubmittedAt:     record.SubmittedAt,
		Attachments:     attachments,
		IntegrityStatus: models.IntegrityUnverified,
	}
	if record.AIPremark != nil && record.AIPremark.Feedback != nil {
		entry.Feedback = *record.AIPremark.Feedback
	}

	return entry
}

// isIntegrityFailure reports whether err came from chain verification.
func isIntegrityFailure(err error) bool {
	var integrityErr *integrity.IntegrityError
	return errors.As(err, &integrityErr)
}

func isValidation(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
