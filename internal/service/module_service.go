package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

// ModuleService lists installed modules for the launcher.
type ModuleService interface {
	List(ctx context.Context, query dto.ModuleQuery) ([]dto.ModuleResponse, error)
}

type moduleService struct {
	repo      repository.ModuleRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewModuleService creates the module listing service.
func NewModuleService(repo repository.ModuleRepository, validate *validator.Validate, logger zerolog.Logger) ModuleService {
	if validate == nil {
		validate = validator.New()
	}
	return &moduleService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "module_service").Logger(),
	}
}

func (s *moduleService) List(ctx context.Context, query dto.ModuleQuery) ([]dto.ModuleResponse, error) {
	query.Role = strings.ToLower(strings.TrimSpace(query.Role))
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	loaded, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	modules := make([]dto.ModuleResponse, 0, len(loaded))
	for _, module := range loaded {
		if query.Role != "" && !repository.RoleAllowed(module.Manifest, query.Role) {
			continue
		}

		entry, err := models.MarshalModuleEntry(module.Manifest.Entry)
		if err != nil {
			s.logger.Warn().Err(err).Str("module_id", module.Manifest.ID).Msg("skipping module with unusable entry")
			continue
		}

		modules = append(modules, dto.ModuleResponse{
			ID:          module.Manifest.ID,
			Title:       module.Manifest.Title,
			Description: module.Manifest.Description,
			Icon:        module.Manifest.Icon,
			EntryType:   module.Manifest.Entry.EntryType(),
			Entry:       entry,
			Launch:      LaunchTarget(module),
			Folder:      module.Folder,
		})
	}

	return modules, nil
}

// LaunchTarget describes how the shell opens a module. Relative document
// paths resolve against the module folder.
func LaunchTarget(module models.LoadedModule) string {
	switch entry := module.Manifest.Entry.(type) {
	case models.BuiltinPanelEntry:
		return "panel:" + entry.Target
	case models.MarkdownEntry:
		return "markdown:" + resolveModulePath(module.Folder, entry.Path)
	case models.StaticHTMLEntry:
		return "html:" + resolveModulePath(module.Folder, entry.Path)
	case models.ExternalProcessEntry:
		return strings.TrimSpace("process:" + strings.Join(append([]string{entry.Command}, entry.Args...), " "))
	default:
		panic(fmt.Sprintf("unhandled module entry %T", entry))
	}
}

func resolveModulePath(folder, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(folder, path)
}
