package models

// SubmissionRecordVersion is written into every exported submission file.
const SubmissionRecordVersion = "1.0"

// AnswerEntry pairs a question with a structured response.
type AnswerEntry struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// Premark is the heuristic score attached to a submission at export time.
type Premark struct {
	Score    *int    `json:"score"`
	Feedback *string `json:"feedback"`
}

// SubmissionRecord is one student's completed work on one assignment, as persisted on disk.
type SubmissionRecord struct {
	Version      string        `json:"version"`
	SchoolID     string        `json:"school_id"`
	ClassID      string        `json:"class_id"`
	AssignmentID string        `json:"assignment_id"`
	StudentID    string        `json:"student_id"`
	StudentName  string        `json:"student_name"`
	SubmittedAt  string        `json:"submitted_at"`
	AnswersText  *string       `json:"answers_text"`
	Answers      []AnswerEntry `json:"answers"`
	AIPremark    *Premark      `json:"ai_premark"`
	Attachments  []string      `json:"attachments"`
	Events       []Event       `json:"events"`
	FinalHash    string        `json:"final_hash"`
	Summary      *string       `json:"summary"`
}

// Score returns the premark score, if any.
func (r SubmissionRecord) Score() *int {
	if r.AIPremark == nil {
		return nil
	}
	return r.AIPremark.Score
}

// SubmissionIdentity carries the identifying fields of a record.
type SubmissionIdentity struct {
	SchoolID     string
	ClassID      string
	AssignmentID string
	StudentID    string
	StudentName  string
}

// SubmissionSummary is the dashboard projection of a record.
type SubmissionSummary struct {
	AssignmentID string  `json:"assignment_id"`
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name"`
	SubmittedAt  string  `json:"submitted_at"`
	Score        *int    `json:"score"`
	Feedback     *string `json:"feedback"`
}
