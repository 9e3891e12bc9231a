package models

import "time"

// HomeworkPackVersion is written into every pack created by the application.
const HomeworkPackVersion = "1.0"

// HomeworkAssignment is one teacher-authored assignment inside a pack.
type HomeworkAssignment struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Subject        string   `json:"subject"`
	YearLevel      string   `json:"year_level"`
	DueAt          *string  `json:"due_at"`
	InstructionsMD string   `json:"instructions_md"`
	Attachments    []string `json:"attachments"`
	AllowGames     bool     `json:"allow_games"`
	AllowAIPremark bool     `json:"allow_ai_premark"`
	MaxScore       *int     `json:"max_score"`
}

// HomeworkPack bundles assignments for one class.
type HomeworkPack struct {
	Version     string               `json:"version"`
	SchoolID    string               `json:"school_id"`
	ClassID     string               `json:"class_id"`
	CreatedAt   string               `json:"created_at"`
	Assignments []HomeworkAssignment `json:"assignments"`
}

// CreatedTime parses the embedded creation timestamp.
func (p HomeworkPack) CreatedTime() (time.Time, bool) {
	parsed, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Assignment looks up an assignment by id.
func (p HomeworkPack) Assignment(id string) (HomeworkAssignment, bool) {
	for _, assignment := range p.Assignments {
		if assignment.ID == id {
			return assignment, true
		}
	}
	return HomeworkAssignment{}, false
}

// DisallowsGames reports whether any assignment in the pack forbids games.
func (p HomeworkPack) DisallowsGames() bool {
	for _, assignment := range p.Assignments {
		if !assignment.AllowGames {
			return true
		}
	}
	return false
}
