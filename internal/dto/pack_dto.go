package dto

import "github.com/noah-isme/chatty-edu-api/internal/models"

// PackAssignmentRequest describes one assignment in a pack creation request.
type PackAssignmentRequest struct {
	ID             string  `json:"id" validate:"required,max=128,excludesall=/\\"`
	Title          string  `json:"title" validate:"required,max=255"`
	Subject        string  `json:"subject" validate:"omitempty,max=128"`
	YearLevel      string  `json:"year_level" validate:"omitempty,max=32"`
	DueAt          *string `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	InstructionsMD string  `json:"instructions_md" validate:"max=20000"`
	AllowGames     bool    `json:"allow_games"`
	AllowAIPremark bool    `json:"allow_ai_premark"`
	MaxScore       *int    `json:"max_score" validate:"omitempty,gt=0,lte=1000"`
}

// PackCreateRequest creates a homework pack with one or more assignments.
type PackCreateRequest struct {
	SchoolID    string                  `json:"school_id" validate:"omitempty,max=128"`
	ClassID     string                  `json:"class_id" validate:"omitempty,max=128,excludesall=/\\"`
	Assignments []PackAssignmentRequest `json:"assignments" validate:"required,min=1,max=50,dive"`
}

// PackTemplateRequest exports the sample pack template.
type PackTemplateRequest struct {
	SchoolID string `json:"school_id" validate:"omitempty,max=128"`
	ClassID  string `json:"class_id" validate:"omitempty,max=128"`
}

// PackImportRequest copies a pack file into the assigned folder.
type PackImportRequest struct {
	Path string `json:"path" validate:"required"`
}

// PackResponse returns a pack and the file it lives in.
type PackResponse struct {
	Path          string              `json:"path"`
	Pack          models.HomeworkPack `json:"pack"`
	GamesDisabled bool                `json:"games_disabled"`
}
