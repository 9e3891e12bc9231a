package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/middleware"
	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// SubmissionExportedEvent names the notification published after an export.
const SubmissionExportedEvent = "submission.exported"

// Publisher sends a message on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// SubmissionNotification is the JSON body published for every export.
type SubmissionNotification struct {
	Event         string                   `json:"event"`
	Summary       models.SubmissionSummary `json:"summary"`
	ClassID       string                   `json:"class_id"`
	FinalHash     string                   `json:"final_hash"`
	Replaced      bool                     `json:"replaced"`
	SentAt        time.Time                `json:"sent_at"`
	CorrelationID string                   `json:"correlation_id,omitempty"`
}

// Notifier publishes export notifications when a publisher is configured.
type Notifier struct {
	publisher Publisher
	subject   string
	logger    zerolog.Logger
}

// NewNotifier returns a notifier; a nil publisher or empty subject disables it.
func NewNotifier(publisher Publisher, subject string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "submission_notifier").Logger(),
	}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.publisher != nil && n.subject != ""
}

// Notify publishes the notification, tagged with the request correlation id
// found in ctx. Failures are logged, never returned.
func (n *Notifier) Notify(ctx context.Context, notification SubmissionNotification) {
	if !n.enabled() {
		return
	}
	if notification.CorrelationID == "" {
		notification.CorrelationID = middleware.CorrelationIDFromContext(ctx)
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		n.logger.Warn().Err(err).Msg("failed to encode submission notification")
		return
	}
	if err := n.publisher.Publish(n.subject, payload); err != nil {
		n.logger.Warn().Err(err).Str("subject", n.subject).Msg("failed to publish submission notification")
	}
}
