package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/observability"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
	"github.com/noah-isme/chatty-edu-api/pkg/ai"
)

// ChatService answers student questions with the local model.
type ChatService interface {
	Ask(ctx context.Context, request dto.ChatRequest) (dto.ChatResponse, error)
}

type chatService struct {
	cache     *ai.ModelCache
	settings  repository.SettingsStore
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewChatService creates the chat service around a caller-owned model cache.
func NewChatService(cache *ai.ModelCache, settings repository.SettingsStore, validate *validator.Validate, logger zerolog.Logger) ChatService {
	if validate == nil {
		validate = validator.New()
	}

	return &chatService{
		cache:     cache,
		settings:  settings,
		validator: validate,
		logger:    logger.With().Str("component", "chat_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/chatty-edu-api/internal/service/chat"),
	}
}

// Ask never fails because of the model: a model error becomes the reply text.
func (s *chatService) Ask(ctx context.Context, request dto.ChatRequest) (dto.ChatResponse, error) {
	if err := s.validator.Struct(request); err != nil {
		return dto.ChatResponse{}, err
	}

	settings, err := s.settings.LoadOrInit(ctx)
	if err != nil {
		return dto.ChatResponse{}, fmt.Errorf("failed to load settings: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "chat.ask", trace.WithAttributes(
		attribute.String("model.name", settings.Model.Name),
	))
	defer span.End()

	outcome := "answered"
	answer, err := s.complete(ctx, settings.Model, request.Message)
	if err != nil {
		outcome = "fallback"
		span.RecordError(err)
		s.logger.Warn().Err(err).Msg("local model unavailable")
		answer = fmt.Sprintf("I couldn't run the local model yet (%v).", err)
	}

	reply, filtered := NewSafetyFilter(settings.Safety).Apply(answer, request.Message)
	if filtered {
		outcome = "filtered"
		s.logger.Info().Msg("chat reply replaced by safety filter")
	}
	observability.ChatReplies().WithLabelValues(outcome).Inc()

	return dto.ChatResponse{Reply: reply, Filtered: filtered}, nil
}

func (s *chatService) complete(ctx context.Context, cfg models.ModelConfig, input string) (string, error) {
	model, err := s.cache.Get(ai.ModelConfig{Name: cfg.Name, Path: cfg.Path, MaxTokens: cfg.MaxTokens})
	if err != nil {
		return "", err
	}
	return model.Complete(ctx, input)
}
