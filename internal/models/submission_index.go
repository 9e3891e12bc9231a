package models

import (
	"time"

	"gorm.io/datatypes"
)

// Integrity states recorded for indexed submissions. Files written without
// an event chain are unverifiable rather than altered.
const (
	IntegrityUnverified   = "unverified"
	IntegrityIntact       = "intact"
	IntegrityAltered      = "altered"
	IntegrityUnverifiable = "unverifiable"
)

// SubmissionIndex is the queryable row kept for every exported or imported submission file.
type SubmissionIndex struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AssignmentID    string         `gorm:"size:128;not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID       string         `gorm:"size:128;not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	StudentName     string         `gorm:"size:255" json:"student_name"`
	ClassID         string         `gorm:"size:128" json:"class_id"`
	Score           *int           `json:"score"`
	Feedback        string         `gorm:"type:text" json:"feedback"`
	FinalHash       string         `gorm:"size:64;not null" json:"final_hash"`
	FilePath        string         `gorm:"size:1024" json:"file_path"`
	SubmittedAt     string         `gorm:"size:64" json:"submitted_at"`
	Attachments     datatypes.JSON `json:"attachments"`
	Attempts        int            `gorm:"not null;default:1" json:"attempts"`
	IntegrityStatus string         `gorm:"size:32;not null;default:unverified" json:"integrity_status"`
	IntegrityDetail string         `gorm:"type:text" json:"integrity_detail"`
	VerifiedAt      *time.Time     `json:"verified_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsAltered reports whether the last verification flagged the file.
func (s SubmissionIndex) IsAltered() bool {
	return s.IntegrityStatus == IntegrityAltered
}
