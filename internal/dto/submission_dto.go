package dto

import (
	"time"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// SubmissionExportRequest is sent by the student UI when homework is handed in.
type SubmissionExportRequest struct {
	AssignmentID string   `json:"assignment_id" validate:"required,max=128,excludesall=/\\"`
	AnswersText  string   `json:"answers_text" validate:"max=200000"`
	Attachments  []string `json:"attachments" validate:"omitempty,max=20,dive,required"`
}

// SubmissionExportResponse reports the exported file and its fingerprint.
type SubmissionExportResponse struct {
	Path      string                   `json:"path"`
	FinalHash string                   `json:"final_hash"`
	Replaced  bool                     `json:"replaced"`
	Events    int                      `json:"events"`
	Summary   models.SubmissionSummary `json:"summary"`
}

// SubmissionSummaryFilter narrows dashboard listings.
type SubmissionSummaryFilter struct {
	AssignmentID string `query:"assignment_id" validate:"omitempty,max=128"`
	StudentID    string `query:"student_id" validate:"omitempty,max=128"`
}

// SubmissionSummaryResponse is one dashboard row.
type SubmissionSummaryResponse struct {
	AssignmentID    string     `json:"assignment_id"`
	StudentID       string     `json:"student_id"`
	StudentName     string     `json:"student_name"`
	SubmittedAt     string     `json:"submitted_at"`
	Score           *int       `json:"score"`
	Feedback        *string    `json:"feedback"`
	FinalHash       string     `json:"final_hash"`
	Attempts        int        `json:"attempts"`
	IntegrityStatus string     `json:"integrity_status"`
	VerifiedAt      *time.Time `json:"verified_at"`
}

// VerificationResponse reports the outcome of a chain verification.
type VerificationResponse struct {
	AssignmentID string    `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	Status       string    `json:"status"`
	FinalHash    string    `json:"final_hash"`
	Events       int       `json:"events"`
	Failure      string    `json:"failure,omitempty"`
	EventIndex   *int      `json:"event_index,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	VerifiedAt   time.Time `json:"verified_at"`
}

// ReindexResponse summarises a scan of the submissions folder.
type ReindexResponse struct {
	Indexed      int `json:"indexed"`
	Intact       int `json:"intact"`
	Altered      int `json:"altered"`
	Unverifiable int `json:"unverifiable"`
	Skipped      int `json:"skipped"`
}

// NewSubmissionSummaryResponse joins a record projection with its index row.
func NewSubmissionSummaryResponse(summary models.SubmissionSummary, index *models.SubmissionIndex) SubmissionSummaryResponse {
	response := SubmissionSummaryResponse{
		AssignmentID:    summary.AssignmentID,
		StudentID:       summary.StudentID,
		StudentName:     summary.StudentName,
		SubmittedAt:     summary.SubmittedAt,
		Score:           summary.Score,
		Feedback:        summary.Feedback,
		Attempts:        1,
		IntegrityStatus: models.IntegrityUnverified,
	}

	if index != nil {
		response.FinalHash = index.FinalHash
		response.Attempts = index.Attempts
		response.IntegrityStatus = index.IntegrityStatus
		response.VerifiedAt = index.VerifiedAt
	}

	return response
}
