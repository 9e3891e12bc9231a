package service

import (
	"strings"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// Premark feedback lines shown to students.
const (
	PremarkFeedbackBrief    = "Try adding more detail to your answers."
	PremarkFeedbackPartial  = "Good start—check if all parts are addressed."
	PremarkFeedbackThorough = "Looks thorough. Review for accuracy and clarity."
)

// Premark scores an answer by the byte length of its trimmed text. It is a
// length heuristic, not a grade.
func Premark(answers string) models.Premark {
	length := len(strings.TrimSpace(answers))

	score := 50
	switch {
	case length > 400:
		score = 90
	case length > 200:
		score = 80
	case length > 100:
		score = 70
	case length > 40:
		score = 60
	}

	feedback := PremarkFeedbackThorough
	switch {
	case length < 50:
		feedback = PremarkFeedbackBrief
	case length < 150:
		feedback = PremarkFeedbackPartial
	}

	return models.Premark{Score: &score, Feedback: &feedback}
}
