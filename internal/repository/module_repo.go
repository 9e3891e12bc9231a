package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// HomeworkDashboardModuleID is the built-in module that is always installed.
const HomeworkDashboardModuleID = "homework_dashboard"

// ModuleRepository discovers module manifests under the modules folder.
type ModuleRepository interface {
	LoadAll(ctx context.Context) ([]models.LoadedModule, error)
}

type moduleRepository struct {
	root   string
	logger zerolog.Logger
}

// NewModuleRepository creates a repository over root.
func NewModuleRepository(root string, logger zerolog.Logger) ModuleRepository {
	return &moduleRepository{
		root:   root,
		logger: logger.With().Str("component", "module_repository").Logger(),
	}
}

func (r *moduleRepository) LoadAll(ctx context.Context) ([]models.LoadedModule, error) {
	if err := r.ensureBuiltin(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	modules := make([]models.LoadedModule, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		folder := filepath.Join(r.root, entry.Name())
		data, err := os.ReadFile(filepath.Join(folder, "module.json"))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				r.logger.Debug().Str("folder", entry.Name()).Msg("skipping folder without module.json")
			} else {
				r.logger.Warn().Err(err).Str("folder", entry.Name()).Msg("could not read module manifest")
			}
			continue
		}

		var manifest models.ModuleManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			r.logger.Warn().Err(err).Str("folder", entry.Name()).Msg("invalid module manifest")
			continue
		}

		modules = append(modules, models.LoadedModule{Manifest: manifest, Folder: folder})
	}

	return modules, nil
}

func (r *moduleRepository) ensureBuiltin() error {
	folder := filepath.Join(r.root, HomeworkDashboardModuleID)
	manifestPath := filepath.Join(folder, "module.json")
	if _, err := os.Stat(manifestPath); err == nil {
		return nil
	}

	description := "Built-in view for packs and submissions"
	version := "1.0.0"
	author := "Chatty-EDU"
	manifest := models.ModuleManifest{
		ID:          HomeworkDashboardModuleID,
		Title:       "Homework Dashboard",
		Description: &description,
		Version:     &version,
		Author:      &author,
		Roles:       []string{"teacher", "student"},
		Entry:       models.BuiltinPanelEntry{Target: HomeworkDashboardModuleID},
		Permissions: []string{},
	}

	data, err := encodePretty(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode built-in module: %w", err)
	}
	if err := writeFileAtomic(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write built-in module: %w", err)
	}
	return nil
}

// RoleAllowed reports whether role may open the module, ignoring case.
func RoleAllowed(manifest models.ModuleManifest, role string) bool {
	for _, candidate := range manifest.Roles {
		if strings.EqualFold(candidate, strings.TrimSpace(role)) {
			return true
		}
	}
	return false
}
