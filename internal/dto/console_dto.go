package dto

// ConsoleStatusResponse is what the teacher console shows on entry.
type ConsoleStatusResponse struct {
	TeacherMode         string `json:"teacher_mode"`
	GamesEnabled        bool   `json:"games_enabled"`
	GamesInClassAllowed bool   `json:"games_in_class_allowed"`
	SecretQuestionSet   bool   `json:"secret_question_set"`
	BasePath            string `json:"base_path"`
	AssignedDir         string `json:"assigned_dir"`
	CompletedDir        string `json:"completed_dir"`
}

// TeacherModeRequest switches between class and free time. "free" is
// accepted as shorthand for free_time.
type TeacherModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=class free free_time"`
}

// GamePolicyRequest changes the game switches; omitted fields are left as they are.
type GamePolicyRequest struct {
	Enabled      *bool `json:"enabled"`
	AllowInClass *bool `json:"allow_in_class"`
}

// SetSecretRequest replaces the secret question used to recover a forgotten PIN.
type SetSecretRequest struct {
	Question string `json:"question" validate:"required,max=256"`
	Answer   string `json:"answer" validate:"required,max=256"`
}

// SecretQuestionResponse is shown on the forgotten PIN screen.
type SecretQuestionResponse struct {
	Question string `json:"question"`
}

// SecretRecoveryRequest unlocks the console with the secret answer.
type SecretRecoveryRequest struct {
	Answer string `json:"answer" validate:"required,max=256"`
}

// PlayPolicyResponse tells the student shell whether a game may start.
type PlayPolicyResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
