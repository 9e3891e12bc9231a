package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// PackTemplateFileName is the fixed name of the exported pack template.
const PackTemplateFileName = "homework_pack_template.json"

// ErrPackNotFound indicates a pack file does not exist.
var ErrPackNotFound = errors.New("homework pack not found")

// StoredPack pairs a pack with its file.
type StoredPack struct {
	Path string
	Pack models.HomeworkPack
}

// PackStore reads and writes homework pack files under homework/assigned.
type PackStore interface {
	Create(ctx context.Context, schoolID, classID string, assignments []models.HomeworkAssignment) (StoredPack, error)
	ExportTemplate(ctx context.Context, schoolID, classID string) (StoredPack, error)
	Load(ctx context.Context, path string) (models.HomeworkPack, error)
	Latest(ctx context.Context) (StoredPack, bool, error)
	Import(ctx context.Context, source string) (StoredPack, error)
	Dir() string
}

type packStore struct {
	dir    string
	logger zerolog.Logger
	now    func() time.Time
}

// NewPackStore creates a pack store over dir.
func NewPackStore(dir string, logger zerolog.Logger) PackStore {
	return &packStore{
		dir:    dir,
		logger: logger.With().Str("component", "pack_store").Logger(),
		now:    time.Now,
	}
}

func (s *packStore) Dir() string {
	return s.dir
}

// IsPackFileName reports whether name looks like a homework pack file.
func IsPackFileName(name string) bool {
	return isJSONFile(name) && strings.Contains(name, "homework_pack")
}

func (s *packStore) Create(ctx context.Context, schoolID, classID string, assignments []models.HomeworkAssignment) (StoredPack, error) {
	if err := ctx.Err(); err != nil {
		return StoredPack{}, err
	}
	if len(assignments) == 0 {
		return StoredPack{}, fmt.Errorf("a pack needs at least one assignment")
	}
	if err := checkIdentifier(classID); err != nil {
		return StoredPack{}, err
	}

	pack := models.HomeworkPack{
		Version:     models.HomeworkPackVersion,
		SchoolID:    schoolID,
		ClassID:     classID,
		CreatedAt:   s.now().UTC().Format(time.RFC3339Nano),
		Assignments: normalizeAssignments(assignments),
	}

	name := fmt.Sprintf("homework_pack_%s_%s.json", classID, strings.ReplaceAll(pack.CreatedAt, ":", "-"))
	return s.write(name, pack)
}

func (s *packStore) ExportTemplate(ctx context.Context, schoolID, classID string) (StoredPack, error) {
	if err := ctx.Err(); err != nil {
		return StoredPack{}, err
	}

	maxScore := 100
	pack := models.HomeworkPack{
		Version:   models.HomeworkPackVersion,
		SchoolID:  schoolID,
		ClassID:   classID,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
		Assignments: []models.HomeworkAssignment{{
			ID:             "hw-sample-001",
			Title:          "Sample homework",
			Subject:        "General",
			YearLevel:      "7",
			InstructionsMD: "Add your instructions here.\n- Question 1\n- Question 2",
			Attachments:    []string{},
			AllowGames:     false,
			AllowAIPremark: true,
			MaxScore:       &maxScore,
		}},
	}

	return s.write(PackTemplateFileName, pack)
}

func (s *packStore) write(name string, pack models.HomeworkPack) (StoredPack, error) {
	data, err := encodePretty(pack)
	if err != nil {
		return StoredPack{}, fmt.Errorf("failed to encode pack: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return StoredPack{}, fmt.Errorf("failed to write pack: %w", err)
	}

	s.logger.Info().Str("path", path).Int("assignments", len(pack.Assignments)).Msg("homework pack written")
	return StoredPack{Path: path, Pack: pack}, nil
}

func (s *packStore) Load(ctx context.Context, path string) (models.HomeworkPack, error) {
	if err := ctx.Err(); err != nil {
		return models.HomeworkPack{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.HomeworkPack{}, ErrPackNotFound
		}
		return models.HomeworkPack{}, fmt.Errorf("failed to read pack: %w", err)
	}

	var pack models.HomeworkPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return models.HomeworkPack{}, fmt.Errorf("pack parse error: %w", err)
	}

	return pack, nil
}

// Latest returns the newest pack by embedded created_at, falling back to the
// file modification time. Ties keep the first file in name order.
func (s *packStore) Latest(ctx context.Context) (StoredPack, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StoredPack{}, false, nil
		}
		return StoredPack{}, false, fmt.Errorf("failed to list packs: %w", err)
	}

	var (
		newest   StoredPack
		newestTS int64
		found    bool
	)

	for _, entry := range entries {
		if entry.IsDir() || !IsPackFileName(entry.Name()) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		pack, err := s.Load(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return StoredPack{}, false, ctxErr
			}
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping homework pack")
			continue
		}

		ts := packTimestamp(pack, entry)
		if found && newestTS >= ts {
			continue
		}
		newest = StoredPack{Path: path, Pack: pack}
		newestTS = ts
		found = true
	}

	return newest, found, nil
}

func packTimestamp(pack models.HomeworkPack, entry os.DirEntry) int64 {
	if created, ok := pack.CreatedTime(); ok {
		return created.UnixMilli()
	}
	info, err := entry.Info()
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}

func (s *packStore) Import(ctx context.Context, source string) (StoredPack, error) {
	pack, err := s.Load(ctx, source)
	if err != nil {
		return StoredPack{}, err
	}

	name := filepath.Base(source)
	if !IsPackFileName(name) {
		name = "homework_pack_import.json"
	}
	dest := filepath.Join(s.dir, name)
	if sameFile(source, dest) {
		return StoredPack{Path: dest, Pack: pack}, nil
	}

	if err := copyFile(source, dest); err != nil {
		return StoredPack{}, fmt.Errorf("failed to copy pack: %w", err)
	}

	s.logger.Info().Str("source", source).Str("path", dest).Msg("homework pack imported")
	return StoredPack{Path: dest, Pack: pack}, nil
}

func sameFile(a, b string) bool {
	left, err := os.Stat(a)
	if err != nil {
		return false
	}
	right, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(left, right)
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	return writeFileAtomic(dest, data, 0o644)
}

func normalizeAssignments(assignments []models.HomeworkAssignment) []models.HomeworkAssignment {
	out := make([]models.HomeworkAssignment, len(assignments))
	for i, assignment := range assignments {
		if assignment.Attachments == nil {
			assignment.Attachments = []string{}
		}
		out[i] = assignment
	}
	return out
}
