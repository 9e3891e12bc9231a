package repository

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout resolves the folders under the application data directory.
type Layout struct {
	Base string
}

// NewLayout returns a layout rooted at base.
func NewLayout(base string) Layout {
	return Layout{Base: base}
}

func (l Layout) HomeworkDir() string  { return filepath.Join(l.Base, "homework") }
func (l Layout) AssignedDir() string  { return filepath.Join(l.Base, "homework", "assigned") }
func (l Layout) CompletedDir() string { return filepath.Join(l.Base, "homework", "completed") }
func (l Layout) ModulesDir() string   { return filepath.Join(l.Base, "modules") }
func (l Layout) ConfigDir() string    { return filepath.Join(l.Base, "config") }
func (l Layout) RuntimeDir() string   { return filepath.Join(l.Base, "runtime") }

// SettingsPath is the location of settings.json.
func (l Layout) SettingsPath() string {
	return filepath.Join(l.ConfigDir(), "settings.json")
}

// EnsureFolders creates every folder the shell expects. Existing folders are left alone.
func (l Layout) EnsureFolders() error {
	dirs := []string{
		l.Base,
		l.HomeworkDir(),
		l.AssignedDir(),
		l.CompletedDir(),
		filepath.Join(l.Base, "revision"),
		l.ModulesDir(),
		filepath.Join(l.Base, "logs"),
		l.ConfigDir(),
		l.RuntimeDir(),
		filepath.Join(l.Base, "themes"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}
