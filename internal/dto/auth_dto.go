package dto

import "time"

// TeacherLoginRequest unlocks the teacher console.
type TeacherLoginRequest struct {
	PIN string `json:"pin" validate:"required,max=32"`
}

// TeacherSessionResponse carries the issued bearer token.
type TeacherSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChangePINRequest replaces the teacher PIN; the new PIN must be confirmed.
type ChangePINRequest struct {
	CurrentPIN string `json:"current_pin" validate:"required"`
	NewPIN     string `json:"new_pin" validate:"required,min=4,max=32"`
	ConfirmPIN string `json:"confirm_pin" validate:"required,eqfield=NewPIN"`
}
