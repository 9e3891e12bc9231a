package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

// TeacherRole is carried in teacher session tokens.
const TeacherRole = "teacher"

// TeacherSessionIssuer is the issuer claim of teacher tokens.
const TeacherSessionIssuer = "chatty-edu"

var (
	// ErrInvalidPIN indicates a wrong teacher PIN.
	ErrInvalidPIN = errors.New("invalid teacher pin")
	// ErrSecretNotSet means no secret question has been configured.
	ErrSecretNotSet = errors.New("secret question not set")
	// ErrInvalidSecretAnswer indicates a wrong answer to the secret question.
	ErrInvalidSecretAnswer = errors.New("invalid secret answer")
)

// TeacherClaims are the JWT claims of a teacher session.
type TeacherClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService unlocks the teacher console.
type AuthService interface {
	Login(ctx context.Context, request dto.TeacherLoginRequest) (dto.TeacherSessionResponse, error)
	ChangePIN(ctx context.Context, request dto.ChangePINRequest) error
	SecretQuestion(ctx context.Context) (dto.SecretQuestionResponse, error)
	Recover(ctx context.Context, request dto.SecretRecoveryRequest) (dto.TeacherSessionResponse, error)
}

type authService struct {
	settings  repository.SettingsStore
	secret    []byte
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService creates the PIN based teacher session service.
func NewAuthService(settings repository.SettingsStore, secret string, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	return &authService{
		settings:  settings,
		secret:    []byte(secret),
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, request dto.TeacherLoginRequest) (dto.TeacherSessionResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.TeacherSessionResponse{}, err
	}

	settings, err := s.settings.LoadOrInit(ctx)
	if err != nil {
		return dto.TeacherSessionResponse{}, fmt.Errorf("failed to load settings: %w", err)
	}

	if !pinMatches(settings, request.PIN) {
		s.logger.Warn().Msg("teacher login rejected")
		return dto.TeacherSessionResponse{}, ErrInvalidPIN
	}

	return s.issue("teacher session started")
}

func (s *authService) SecretQuestion(ctx context.Context) (dto.SecretQuestionResponse, error) {
	settings, err := s.settings.LoadOrInit(ctx)
	if err != nil {
		return dto.SecretQuestionResponse{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !secretConfigured(settings) {
		return dto.SecretQuestionResponse{}, ErrSecretNotSet
	}
	return dto.SecretQuestionResponse{Question: settings.SecretQuestion}, nil
}

func (s *authService) Recover(ctx context.Context, request dto.SecretRecoveryRequest) (dto.TeacherSessionResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.TeacherSessionResponse{}, err
	}

	settings, err := s.settings.LoadOrInit(ctx)
	if err != nil {
		return dto.TeacherSessionResponse{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !secretConfigured(settings) {
		return dto.TeacherSessionResponse{}, ErrSecretNotSet
	}

	answer := strings.TrimSpace(request.Answer)
	if subtle.ConstantTimeCompare([]byte(settings.SecretAnswer), []byte(answer)) != 1 {
		s.logger.Warn().Msg("secret answer rejected")
		return dto.TeacherSessionResponse{}, ErrInvalidSecretAnswer
	}

	return s.issue("teacher session started with secret answer")
}

// issue signs a teacher token valid for the configured ttl.
func (s *authService) issue(message string) (dto.TeacherSessionResponse, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := TeacherClaims{
		Role: TeacherRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   TeacherRole,
			Issuer:    TeacherSessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.TeacherSessionResponse{}, fmt.Errorf("failed to sign teacher token: %w", err)
	}

	s.logger.Info().Time("expires_at", expiresAt).Msg(message)
	return dto.TeacherSessionResponse{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) ChangePIN(ctx context.Context, request dto.ChangePINRequest) error {
	if err := s.validator.Struct(request); err != nil {
		return err
	}

	_, err := s.settings.Update(ctx, func(settings *models.Settings) error {
		if !pinMatches(*settings, request.CurrentPIN) {
			return ErrInvalidPIN
		}
		settings.TeacherPIN = request.NewPIN
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Msg("teacher pin changed")
	return nil
}

func pinMatches(settings models.Settings, pin string) bool {
	stored := settings.TeacherPIN
	if stored == "" {
		stored = repository.DefaultTeacherPIN
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) == 1
}

func secretConfigured(settings models.Settings) bool {
	return settings.SecretQuestion != "" && settings.SecretAnswer != ""
}
