package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

var (
	// ErrNoPack indicates the assigned folder holds no readable pack.
	ErrNoPack = errors.New("no homework pack available")
	// ErrInvalidPack indicates a pack request that passed field validation but is inconsistent.
	ErrInvalidPack = errors.New("invalid homework pack")
)

// PackService manages homework packs and the class policy they carry.
type PackService interface {
	Create(ctx context.Context, request dto.PackCreateRequest) (dto.PackResponse, error)
	Template(ctx context.Context, request dto.PackTemplateRequest) (dto.PackResponse, error)
	Import(ctx context.Context, request dto.PackImportRequest) (dto.PackResponse, error)
	Latest(ctx context.Context) (dto.PackResponse, error)
}

type packService struct {
	packs     repository.PackStore
	settings  repository.SettingsStore
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewPackService creates the pack service.
func NewPackService(packs repository.PackStore, settings repository.SettingsStore, validate *validator.Validate, logger zerolog.Logger) PackService {
	if validate == nil {
		validate = validator.New()
	}

	return &packService{
		packs:     packs,
		settings:  settings,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "pack_service").Logger(),
	}
}

func (s *packService) Create(ctx context.Context, request dto.PackCreateRequest) (dto.PackResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.PackResponse{}, err
	}

	schoolID, classID, err := s.scope(ctx, request.SchoolID, request.ClassID)
	if err != nil {
		return dto.PackResponse{}, err
	}

	seen := make(map[string]struct{}, len(request.Assignments))
	assignments := make([]models.HomeworkAssignment, 0, len(request.Assignments))
	for _, item := range request.Assignments {
		id := strings.TrimSpace(item.ID)
		if _, dup := seen[id]; dup {
			return dto.PackResponse{}, fmt.Errorf("%w: duplicate assignment id %q", ErrInvalidPack, id)
		}
		seen[id] = struct{}{}

		assignments = append(assignments, models.HomeworkAssignment{
			ID:             id,
			Title:          s.clean(item.Title),
			Subject:        s.clean(item.Subject),
			YearLevel:      s.clean(item.YearLevel),
			DueAt:          item.DueAt,
			InstructionsMD: s.clean(item.InstructionsMD),
			Attachments:    []string{},
			AllowGames:     item.AllowGames,
			AllowAIPremark: item.AllowAIPremark,
			MaxScore:       item.MaxScore,
		})
	}

	stored, err := s.packs.Create(ctx, schoolID, classID, assignments)
	if err != nil {
		return dto.PackResponse{}, err
	}

	return s.withPolicy(ctx, stored)
}

func (s *packService) Template(ctx context.Context, request dto.PackTemplateRequest) (dto.PackResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.PackResponse{}, err
	}

	schoolID, classID, err := s.scope(ctx, request.SchoolID, request.ClassID)
	if err != nil {
		return dto.PackResponse{}, err
	}

	stored, err := s.packs.ExportTemplate(ctx, schoolID, classID)
	if err != nil {
		return dto.PackResponse{}, err
	}

	return dto.PackResponse{Path: stored.Path, Pack: stored.Pack}, nil
}

func (s *packService) Import(ctx context.Context, request dto.PackImportRequest) (dto.PackResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.PackResponse{}, err
	}

	stored, err := s.packs.Import(ctx, strings.TrimSpace(request.Path))
	if err != nil {
		return dto.PackResponse{}, err
	}

	return s.withPolicy(ctx, stored)
}

func (s *packService) Latest(ctx context.Context) (dto.PackResponse, error) {
	stored, ok, err := s.packs.Latest(ctx)
	if err != nil {
		return dto.PackResponse{}, err
	}
	if !ok {
		return dto.PackResponse{}, ErrNoPack
	}

	return s.withPolicy(ctx, stored)
}

// withPolicy switches games off in settings when any assignment forbids them.
func (s *packService) withPolicy(ctx context.Context, stored repository.StoredPack) (dto.PackResponse, error) {
	response := dto.PackResponse{Path: stored.Path, Pack: stored.Pack}
	if !stored.Pack.DisallowsGames() {
		return response, nil
	}

	_, err := s.settings.Update(ctx, func(settings *models.Settings) error {
		settings.Game.Enabled = false
		settings.Game.GamesInClassAllowed = false
		return nil
	})
	if err != nil {
		return dto.PackResponse{}, fmt.Errorf("failed to apply pack policy: %w", err)
	}

	s.logger.Info().Str("path", stored.Path).Msg("games disabled by homework pack policy")
	response.GamesDisabled = true
	return response, nil
}

// scope fills a blank school or class from defaults and the student profile.
func (s *packService) scope(ctx context.Context, schoolID, classID string) (string, string, error) {
	schoolID = strings.TrimSpace(schoolID)
	classID = strings.TrimSpace(classID)
	if schoolID == "" {
		schoolID = models.DefaultSchoolID
	}
	if classID == "" {
		settings, err := s.settings.LoadOrInit(ctx)
		if err != nil {
			return "", "", fmt.Errorf("failed to load settings: %w", err)
		}
		_, _, classID = settings.Student.Identity()
	}
	return schoolID, classID, nil
}

// clean strips markup from teacher-authored text, keeping plain characters.
func (s *packService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}
