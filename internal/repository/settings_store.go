package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// DefaultTeacherPIN is used until a teacher changes it.
const DefaultTeacherPIN = "0000"

// SettingsStore persists the settings document under config/settings.json.
type SettingsStore interface {
	LoadOrInit(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
	Update(ctx context.Context, mutate func(*models.Settings) error) (models.Settings, error)
}

type settingsStore struct {
	layout Layout
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewSettingsStore creates a settings store for the layout.
func NewSettingsStore(layout Layout, logger zerolog.Logger) SettingsStore {
	return &settingsStore{
		layout: layout,
		logger: logger.With().Str("component", "settings_store").Logger(),
	}
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings(base string) models.Settings {
	return models.Settings{
		Version:          models.SettingsVersion,
		BasePath:         base,
		Mode:             "gui",
		DefaultYearLevel: "year_3",
		TeacherMode:      models.TeacherModeClass,
		TeacherPIN:       DefaultTeacherPIN,
		Student: models.StudentProfile{
			StudentID:   "student-id-placeholder",
			StudentName: "Student Name",
			ClassID:     "class-placeholder",
		},
		Safety: models.SafetyFilterConfig{
			Enabled:           true,
			BlockSwears:       true,
			BlockMatureTopics: true,
			FallbackMessage:   "Let's ask a teacher or parent about that one.",
		},
		Model: models.ModelConfig{
			Name:      "phi-mini-placeholder",
			Path:      filepath.Join(base, "runtime", "model.gguf"),
			MaxTokens: 256,
		},
		Voice: models.VoiceConfig{Enabled: false, Engine: "os_tts"},
		Game: models.GameConfig{
			Enabled:             true,
			GamesInClassAllowed: false,
			AvailableGames:      []string{"chattybox", "chattyclysm"},
		},
	}
}

func (s *settingsStore) LoadOrInit(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOrInitLocked(ctx)
}

func (s *settingsStore) loadOrInitLocked(ctx context.Context) (models.Settings, error) {
	if err := ctx.Err(); err != nil {
		return models.Settings{}, err
	}

	path := s.layout.SettingsPath()
	data, err := os.ReadFile(path)
	if err == nil {
		var settings models.Settings
		if err := json.Unmarshal(data, &settings); err != nil {
			return models.Settings{}, fmt.Errorf("settings parse error: %w", err)
		}
		if settings.BasePath != s.layout.Base {
			settings.BasePath = s.layout.Base
		}
		if settings.TeacherPIN == "" {
			settings.TeacherPIN = DefaultTeacherPIN
		}
		return settings, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := DefaultSettings(s.layout.Base)
	if err := s.saveLocked(settings); err != nil {
		return models.Settings{}, err
	}

	s.logger.Info().Str("path", path).Msg("settings initialised")
	return settings, nil
}

func (s *settingsStore) Save(ctx context.Context, settings models.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(settings)
}

func (s *settingsStore) Update(ctx context.Context, mutate func(*models.Settings) error) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadOrInitLocked(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if err := mutate(&settings); err != nil {
		return models.Settings{}, err
	}
	if err := s.saveLocked(settings); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (s *settingsStore) saveLocked(settings models.Settings) error {
	data, err := encodePretty(settings)
	if err != nil {
		return fmt.Errorf("settings encode error: %w", err)
	}
	if err := writeFileAtomic(s.layout.SettingsPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
