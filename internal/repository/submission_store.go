package repository

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

//go:embed schema/submission.schema.json
var submissionSchemaSource string

// SubmissionSchemaURL identifies the embedded submission file schema.
const SubmissionSchemaURL = "chatty://schema/submission.schema.json"

var (
	// ErrSubmissionNotFound indicates no file exists for the assignment/student pair.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionExists indicates an export would replace an earlier submission.
	ErrSubmissionExists = errors.New("submission already exported for this assignment and student")
	// ErrInvalidIdentifier indicates an id that cannot be used in a file name.
	ErrInvalidIdentifier = errors.New("identifier cannot be used in a file name")
)

// SaveResult reports where a record was written.
type SaveResult struct {
	Path     string
	Replaced bool
}

// SkippedFile names a file load_all could not parse.
type SkippedFile struct {
	Name   string
	Reason string
}

// ScanResult lists the records that parsed and the files that did not.
type ScanResult struct {
	Records []models.SubmissionRecord
	Skipped []SkippedFile
}

// SubmissionStore persists submission records, one JSON file per assignment and student.
type SubmissionStore interface {
	Save(ctx context.Context, record models.SubmissionRecord) (SaveResult, error)
	Load(ctx context.Context, assignmentID, studentID string) (models.SubmissionRecord, error)
	LoadAll(ctx context.Context) ([]models.SubmissionRecord, error)
	Scan(ctx context.Context) (ScanResult, error)
	PathFor(assignmentID, studentID string) (string, error)
	Dir() string
}

// SubmissionStoreOptions tunes the store.
type SubmissionStoreOptions struct {
	RejectOverwrite bool
	// OnSkip is called for every file LoadAll skips.
	OnSkip func(SkippedFile)
}

type submissionStore struct {
	dir     string
	options SubmissionStoreOptions
	schema  *jsonschema.Schema
	logger  zerolog.Logger
}

// NewSubmissionStore creates a store over dir.
func NewSubmissionStore(dir string, options SubmissionStoreOptions, logger zerolog.Logger) (SubmissionStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("submission directory must not be empty")
	}

	schema, err := CompileSubmissionSchema()
	if err != nil {
		return nil, err
	}

	return &submissionStore{
		dir:     dir,
		options: options,
		schema:  schema,
		logger:  logger.With().Str("component", "submission_store").Logger(),
	}, nil
}

// CompileSubmissionSchema compiles the embedded submission file schema.
func CompileSubmissionSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.CompileString(SubmissionSchemaURL, submissionSchemaSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile submission schema: %w", err)
	}
	return schema, nil
}

// SubmissionFileName returns submission_<assignment>_<student>.json.
func SubmissionFileName(assignmentID, studentID string) (string, error) {
	for _, id := range []string{assignmentID, studentID} {
		if err := checkIdentifier(id); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("submission_%s_%s.json", assignmentID, studentID), nil
}

func checkIdentifier(id string) error {
	if strings.TrimSpace(id) == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return nil
}

func (s *submissionStore) Dir() string {
	return s.dir
}

func (s *submissionStore) PathFor(assignmentID, studentID string) (string, error) {
	name, err := SubmissionFileName(assignmentID, studentID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

func (s *submissionStore) Save(ctx context.Context, record models.SubmissionRecord) (SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return SaveResult{}, err
	}

	path, err := s.PathFor(record.AssignmentID, record.StudentID)
	if err != nil {
		return SaveResult{}, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return SaveResult{}, fmt.Errorf("failed to create submissions directory: %w", err)
	}

	replaced := false
	if _, err := os.Stat(path); err == nil {
		replaced = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return SaveResult{}, fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	if replaced && s.options.RejectOverwrite {
		return SaveResult{Path: path}, ErrSubmissionExists
	}

	data, err := encodePretty(record)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to encode submission: %w", err)
	}

	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return SaveResult{}, fmt.Errorf("failed to write submission: %w", err)
	}

	if replaced {
		s.logger.Warn().
			Str("assignment_id", record.AssignmentID).
			Str("student_id", record.StudentID).
			Str("path", path).
			Msg("earlier submission replaced")
	}

	return SaveResult{Path: path, Replaced: replaced}, nil
}

func (s *submissionStore) Load(ctx context.Context, assignmentID, studentID string) (models.SubmissionRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.SubmissionRecord{}, err
	}

	path, err := s.PathFor(assignmentID, studentID)
	if err != nil {
		return models.SubmissionRecord{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.SubmissionRecord{}, ErrSubmissionNotFound
		}
		return models.SubmissionRecord{}, fmt.Errorf("failed to read submission: %w", err)
	}

	return s.decode(data)
}

func (s *submissionStore) LoadAll(ctx context.Context) ([]models.SubmissionRecord, error) {
	result, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// Scan reads every JSON file in the directory. Unreadable or invalid files are
// logged and reported, never fatal.
func (s *submissionStore) Scan(ctx context.Context) (ScanResult, error) {
	result := ScanResult{
		Records: []models.SubmissionRecord{},
		Skipped: []SkippedFile{},
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return ScanResult{}, fmt.Errorf("failed to list submissions: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return ScanResult{}, err
		}
		if entry.IsDir() || !isJSONFile(entry.Name()) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			result.Skipped = append(result.Skipped, s.skip(entry.Name(), fmt.Sprintf("read error: %v", err)))
			continue
		}

		record, err := s.decode(data)
		if err != nil {
			result.Skipped = append(result.Skipped, s.skip(entry.Name(), err.Error()))
			continue
		}

		result.Records = append(result.Records, record)
	}

	return result, nil
}

func (s *submissionStore) skip(name, reason string) SkippedFile {
	skipped := SkippedFile{Name: name, Reason: reason}
	s.logger.Warn().Str("file", name).Str("reason", reason).Msg("skipping submission file")
	if s.options.OnSkip != nil {
		s.options.OnSkip(skipped)
	}
	return skipped
}

// decode parses a submission file, rejecting documents that do not match the schema.
func (s *submissionStore) decode(data []byte) (models.SubmissionRecord, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var document interface{}
	if err := decoder.Decode(&document); err != nil {
		return models.SubmissionRecord{}, fmt.Errorf("json parse error: %w", err)
	}

	if err := s.schema.Validate(document); err != nil {
		return models.SubmissionRecord{}, fmt.Errorf("schema error: %w", err)
	}

	var record models.SubmissionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.SubmissionRecord{}, fmt.Errorf("json parse error: %w", err)
	}

	return record, nil
}

// Summarize projects a record for dashboards without re-verifying its chain.
func Summarize(record models.SubmissionRecord) models.SubmissionSummary {
	summary := models.SubmissionSummary{
		AssignmentID: record.AssignmentID,
		StudentID:    record.StudentID,
		StudentName:  record.StudentName,
		SubmittedAt:  record.SubmittedAt,
	}
	if record.AIPremark != nil {
		summary.Score = record.AIPremark.Score
		summary.Feedback = record.AIPremark.Feedback
	}
	return summary
}
