package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SystemPrompt keeps answers short and suitable for school use.
const SystemPrompt = "You are Chatty-EDU, an offline school AI helper. Answer plainly, safely, and briefly."

const minCompletionTokens = 16

var (
	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatty",
		Subsystem: "model",
		Name:      "completion_duration_seconds",
		Help:      "Duration of local model completions",
	}, []string{"model"})

	completionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatty",
		Subsystem: "model",
		Name:      "completion_failures_total",
		Help:      "Number of failed local model completions",
	}, []string{"model"})
)

// LocalServerConfig points the loader at an OpenAI-compatible inference server.
type LocalServerConfig struct {
	ServerURL string
	Logger    zerolog.Logger
}

// LocalServerModel completes prompts through a locally hosted model server.
type LocalServerModel struct {
	client    *openai.Client
	name      string
	maxTokens int
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewLocalServerLoader returns a Loader that checks the model file exists and
// builds a client for it.
func NewLocalServerLoader(cfg LocalServerConfig) Loader {
	return func(model ModelConfig) (Model, error) {
		return NewLocalServerModel(cfg, model)
	}
}

// NewLocalServerModel builds a model client for one model file.
func NewLocalServerModel(cfg LocalServerConfig, model ModelConfig) (*LocalServerModel, error) {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, fmt.Errorf("model server url is required")
	}

	info, err := os.Stat(model.Path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("model file not found: %s", model.Path)
	}

	name := strings.TrimSpace(model.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(model.Path), filepath.Ext(model.Path))
	}

	maxTokens := model.MaxTokens
	if maxTokens < minCompletionTokens {
		maxTokens = minCompletionTokens
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig("")
	config.BaseURL = strings.TrimRight(cfg.ServerURL, "/")

	return &LocalServerModel{
		client:    openai.NewClientWithConfig(config),
		name:      name,
		maxTokens: maxTokens,
		tracer:    otel.Tracer("github.com/noah-isme/chatty-edu-api/pkg/ai/local"),
		logger:    logger.With().Str("component", "local_model").Str("model", name).Logger(),
	}, nil
}

// Name returns the model name sent to the server.
func (m *LocalServerModel) Name() string {
	return m.name
}

// Complete sends the prompt and returns the trimmed reply.
func (m *LocalServerModel) Complete(parent context.Context, input string) (string, error) {
	ctx, span := m.tracer.Start(parent, "model.complete", trace.WithAttributes(
		attribute.String("model", m.name),
	))
	defer span.End()

	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     m.name,
		MaxTokens: m.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	completionDuration.WithLabelValues(m.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", m.fail(span, fmt.Errorf("model completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", m.fail(span, ErrEmptyResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", m.fail(span, ErrEmptyResponse)
	}

	return content, nil
}

func (m *LocalServerModel) fail(span trace.Span, err error) error {
	completionFailures.WithLabelValues(m.name).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	m.logger.Warn().Err(err).Msg("model completion failed")
	return err
}
