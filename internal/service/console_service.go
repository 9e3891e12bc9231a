package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

var (
	// ErrEmptyGamePolicy indicates a game policy request that changes nothing.
	ErrEmptyGamePolicy = errors.New("no game setting given")
	// ErrBlankSecret indicates a secret question or answer that is only whitespace.
	ErrBlankSecret = errors.New("question and answer cannot be empty")
)

// Reasons reported when a game may not start.
const (
	PlayReasonDisabled  = "games are disabled"
	PlayReasonClassMode = "games are not allowed in class mode"
)

// ConsoleService holds the teacher console switches kept in settings.
type ConsoleService interface {
	Status(ctx context.Context) (dto.ConsoleStatusResponse, error)
	SetMode(ctx context.Context, request dto.TeacherModeRequest) (dto.ConsoleStatusResponse, error)
	SetGames(ctx context.Context, request dto.GamePolicyRequest) (dto.ConsoleStatusResponse, error)
	SetSecret(ctx context.Context, request dto.SetSecretRequest) error
	PlayPolicy(ctx context.Context) (dto.PlayPolicyResponse, error)
}

type consoleService struct {
	settings  repository.SettingsStore
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewConsoleService creates the teacher console service.
func NewConsoleService(settings repository.SettingsStore, validate *validator.Validate, logger zerolog.Logger) ConsoleService {
	if validate == nil {
		validate = validator.New()
	}

	return &consoleService{
		settings:  settings,
		validator: validate,
		logger:    logger.With().Str("component", "console_service").Logger(),
	}
}

func (s *consoleService) Status(ctx context.Context) (dto.ConsoleStatusResponse, error) {
	settings, err := s.settings.LoadOrInit(ctx)
	if err != nil {
		return dto.ConsoleStatusResponse{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return consoleStatus(settings), nil
}

func (s *consoleService) SetMode(ctx context.Context, request dto.TeacherModeRequest) (dto.ConsoleStatusResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.ConsoleStatusResponse{}, err
	}

	mode := models.TeacherModeClass
	if request.Mode != models.TeacherModeClass {
		mode = models.TeacherModeFreeTime
	}

	settings, err := s.settings.Update(ctx, func(settings *models.Settings) error {
		settings.TeacherMode = mode
		return nil
	})
	if err != nil {
		return dto.ConsoleStatusResponse{}, err
	}

	s.logger.Info().Str("teacher_mode", mode).Msg("teacher mode changed")
	return consoleStatus(settings), nil
}

func (s *consoleService) SetGames(ctx context.Context, request dto.GamePolicyRequest) (dto.ConsoleStatusResponse, error) {
	if request.Enabled == nil && request.AllowInClass == nil {
		return dto.ConsoleStatusResponse{}, ErrEmptyGamePolicy
	}

	settings, err := s.settings.Update(ctx, func(settings *models.Settings) error {
		if request.Enabled != nil {
			settings.Game.Enabled = *request.Enabled
		}
		if request.AllowInClass != nil {
			settings.Game.GamesInClassAllowed = *request.AllowInClass
		}
		return nil
	})
	if err != nil {
		return dto.ConsoleStatusResponse{}, err
	}

	s.logger.Info().
		Bool("games_enabled", settings.Game.Enabled).
		Bool("games_in_class_allowed", settings.Game.GamesInClassAllowed).
		Msg("game policy changed")
	return consoleStatus(settings), nil
}

func (s *consoleService) SetSecret(ctx context.Context, request dto.SetSecretRequest) error {
	if err := s.validator.Struct(request); err != nil {
		return err
	}

	question := strings.TrimSpace(request.Question)
	answer := strings.TrimSpace(request.Answer)
	if question == "" || answer == "" {
		return ErrBlankSecret
	}

	_, err := s.settings.Update(ctx, func(settings *models.Settings) error {
		settings.SecretQuestion = question
		settings.SecretAnswer = answer
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Msg("secret question changed")
	return nil
}

func (s *consoleService) PlayPolicy(ctx context.Context) (dto.PlayPolicyResponse, error) {
	settings, err := s.settings.LoadOrInit(ctx)
	if err != nil {
		return dto.PlayPolicyResponse{}, fmt.Errorf("failed to load settings: %w", err)
	}

	switch {
	case !settings.Game.Enabled:
		return dto.PlayPolicyResponse{Reason: PlayReasonDisabled}, nil
	case settings.TeacherMode == models.TeacherModeClass && !settings.Game.GamesInClassAllowed:
		return dto.PlayPolicyResponse{Reason: PlayReasonClassMode}, nil
	default:
		return dto.PlayPolicyResponse{Allowed: true}, nil
	}
}

func consoleStatus(settings models.Settings) dto.ConsoleStatusResponse {
	layout := repository.NewLayout(settings.BasePath)
	return dto.ConsoleStatusResponse{
		TeacherMode:         settings.TeacherMode,
		GamesEnabled:        settings.Game.Enabled,
		GamesInClassAllowed: settings.Game.GamesInClassAllowed,
		SecretQuestionSet:   secretConfigured(settings),
		BasePath:            layout.Base,
		AssignedDir:         layout.AssignedDir(),
		CompletedDir:        layout.CompletedDir(),
	}
}
