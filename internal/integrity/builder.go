package integrity

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// Fixed payloads and question id of the single-answer lifecycle.
const (
	StartPayload       = "session_start"
	FreeformQuestionID = "freeform"
	FinalizePayload    = "submitted"
)

// Stage is the position of a Builder in the submission lifecycle.
type Stage int

const (
	StageNotStarted Stage = iota
	StageStarted
	StageAnswered
	StageFinalized
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StageStarted:
		return "started"
	case StageAnswered:
		return "answered"
	case StageFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Builder emits the start, answer and finalize events of one submission.
// Each transition reads the clock, so elapsed time between stages is kept.
type Builder struct {
	now    func() time.Time
	stage  Stage
	events []models.Event
}

// NewBuilder returns a builder in StageNotStarted. A nil clock uses time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now, events: make([]models.Event, 0, 3)}
}

// Stage returns the current lifecycle stage.
func (b *Builder) Stage() Stage {
	return b.stage
}

// Start emits the session start event.
func (b *Builder) Start() (models.Event, error) {
	return b.advance(StageNotStarted, StageStarted, models.EventKindStart, nil, strPtr(StartPayload))
}

// Answer emits the freeform answer event carrying the raw answer text.
func (b *Builder) Answer(text string) (models.Event, error) {
	return b.advance(StageStarted, StageAnswered, models.EventKindAnswer, strPtr(FreeformQuestionID), &text)
}

// Finalize emits the closing event.
func (b *Builder) Finalize() (models.Event, error) {
	return b.advance(StageAnswered, StageFinalized, models.EventKindFinalize, nil, strPtr(FinalizePayload))
}

// Events returns a copy of the emitted events.
func (b *Builder) Events() []models.Event {
	out := make([]models.Event, len(b.events))
	copy(out, b.events)
	return out
}

// FinalHash returns the finalize event hash, or "" before finalization.
func (b *Builder) FinalHash() string {
	if b.stage != StageFinalized {
		return ""
	}
	return b.events[len(b.events)-1].Hash
}

func (b *Builder) advance(from, to Stage, kind models.EventKind, questionID, payload *string) (models.Event, error) {
	if b.stage != from {
		return models.Event{}, fmt.Errorf("%w: cannot emit %s while %s", ErrStageOrder, kind, b.stage)
	}

	previous := ""
	if len(b.events) > 0 {
		previous = b.events[len(b.events)-1].Hash
	}

	event := Seal(previous, b.now().UnixMilli(), kind, questionID, payload)
	b.events = append(b.events, event)
	b.stage = to
	return event, nil
}

// RecordInput carries everything BuildRecord needs besides the clock.
type RecordInput struct {
	Identity    models.SubmissionIdentity
	AnswersText string
	Attachments []string
	Premark     *models.Premark
}

// BuildRecord runs the full lifecycle and assembles the submission record.
func BuildRecord(now func() time.Time, input RecordInput) models.SubmissionRecord {
	if now == nil {
		now = time.Now
	}

	builder := NewBuilder(now)
	// A fresh builder always accepts the three transitions in order.
	_, _ = builder.Start()
	answer, _ := builder.Answer(input.AnswersText)
	_, _ = builder.Finalize()

	attachments := make([]string, 0, len(input.Attachments))
	for _, path := range input.Attachments {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			attachments = append(attachments, trimmed)
		}
	}

	answersText := *answer.Payload

	return models.SubmissionRecord{
		Version:      models.SubmissionRecordVersion,
		SchoolID:     input.Identity.SchoolID,
		ClassID:      input.Identity.ClassID,
		AssignmentID: input.Identity.AssignmentID,
		StudentID:    input.Identity.StudentID,
		StudentName:  input.Identity.StudentName,
		SubmittedAt:  now().UTC().Format(time.RFC3339Nano),
		AnswersText:  &answersText,
		Answers:      []models.AnswerEntry{},
		AIPremark:    input.Premark,
		Attachments:  attachments,
		Events:       builder.Events(),
		FinalHash:    builder.FinalHash(),
		Summary:      nil,
	}
}

func strPtr(value string) *string {
	return &value
}
