package models

// SettingsVersion is stamped on freshly initialised settings files.
const SettingsVersion = "0.2.0"

// Teacher modes understood by the shell.
const (
	TeacherModeClass    = "class"
	TeacherModeFreeTime = "free_time"
)

// Defaults substituted into exported submissions when the profile is blank.
const (
	DefaultStudentID   = "student-id"
	DefaultStudentName = "Student"
	DefaultClassID     = "class"
	DefaultSchoolID    = "school"
)

// SafetyFilterConfig controls the chat output filter.
type SafetyFilterConfig struct {
	Enabled           bool   `json:"enabled"`
	BlockSwears       bool   `json:"block_swears"`
	BlockMatureTopics bool   `json:"block_mature_topics"`
	FallbackMessage   string `json:"fallback_message"`
}

// ModelConfig identifies the local language model.
type ModelConfig struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	MaxTokens int    `json:"max_tokens"`
}

// VoiceConfig is kept for settings compatibility.
type VoiceConfig struct {
	Enabled bool   `json:"enabled"`
	Engine  string `json:"engine"`
}

// GameConfig controls whether games can be launched.
type GameConfig struct {
	Enabled             bool     `json:"enabled"`
	GamesInClassAllowed bool     `json:"games_in_class_allowed"`
	AvailableGames      []string `json:"available_games"`
}

// StudentProfile identifies the student using this device.
type StudentProfile struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassID     string `json:"class_id"`
}

// Identity returns the profile with blank fields replaced by defaults.
func (p StudentProfile) Identity() (studentID, studentName, classID string) {
	studentID, studentName, classID = p.StudentID, p.StudentName, p.ClassID
	if studentID == "" {
		studentID = DefaultStudentID
	}
	if studentName == "" {
		studentName = DefaultStudentName
	}
	if classID == "" {
		classID = DefaultClassID
	}
	return studentID, studentName, classID
}

// UISettings is shell state the service stores but never interprets.
type UISettings struct {
	LastTheme   *string     `json:"last_theme"`
	WindowSize  *[2]float32 `json:"window_size"`
	RestoreTabs bool        `json:"restore_tabs"`
}

// Settings is the persisted per-device settings document. The secret
// question and answer unlock the teacher console when the PIN is forgotten.
type Settings struct {
	Version          string             `json:"version"`
	BasePath         string             `json:"base_path"`
	Mode             string             `json:"mode"`
	DefaultYearLevel string             `json:"default_year_level"`
	TeacherMode      string             `json:"teacher_mode"`
	TeacherPIN       string             `json:"teacher_pin"`
	SecretQuestion   string             `json:"teacher_secret_question"`
	SecretAnswer     string             `json:"teacher_secret_answer"`
	Student          StudentProfile     `json:"student"`
	Safety           SafetyFilterConfig `json:"janet"`
	Model            ModelConfig        `json:"model"`
	Voice            VoiceConfig        `json:"voice"`
	Game             GameConfig         `json:"game"`
	UI               UISettings         `json:"ui"`
}
