package models

// EventKind names one stage of a submission lifecycle.
type EventKind string

const (
	// EventKindStart opens a submission session.
	EventKindStart EventKind = "start"
	// EventKindAnswer captures answer text for a question.
	EventKindAnswer EventKind = "answer"
	// EventKindFinalize closes the submission.
	EventKindFinalize EventKind = "finalize"
)

// Event is one hash-committed fact in a submission's history.
type Event struct {
	Timestamp    int64     `json:"t"`
	Kind         EventKind `json:"type"`
	QuestionID   *string   `json:"qid,omitempty"`
	Payload      *string   `json:"payload,omitempty"`
	PreviousHash string    `json:"prev"`
	Hash         string    `json:"hash"`
}
