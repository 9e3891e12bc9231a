package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// SubmissionIndexFilter narrows index queries.
type SubmissionIndexFilter struct {
	AssignmentID    *string
	StudentID       *string
	IntegrityStatus *string
}

// SubmissionIndexRepository stores the queryable index of submission files.
type SubmissionIndexRepository interface {
	Upsert(ctx context.Context, entry *models.SubmissionIndex, replaced bool) error
	Get(ctx context.Context, assignmentID, studentID string) (models.SubmissionIndex, error)
	List(ctx context.Context, filter SubmissionIndexFilter) ([]models.SubmissionIndex, error)
	MarkVerification(ctx context.Context, assignmentID, studentID, status, detail string, verifiedAt time.Time) error
}

type submissionIndexRepository struct {
	db *gorm.DB
}

// NewSubmissionIndexRepository instantiates the repository.
func NewSubmissionIndexRepository(db *gorm.DB) SubmissionIndexRepository {
	return &submissionIndexRepository{db: db}
}

// Upsert inserts or refreshes the row for the entry's assignment and student.
// A replaced file bumps the attempt counter.
func (r *submissionIndexRepository) Upsert(ctx context.Context, entry *models.SubmissionIndex, replaced bool) error {
	if entry.IntegrityStatus == "" {
		entry.IntegrityStatus = models.IntegrityUnverified
	}
	if entry.Attempts == 0 {
		entry.Attempts = 1
	}

	assignments := clause.AssignmentColumns([]string{
		"student_name", "class_id", "score", "feedback", "final_hash", "file_path",
		"submitted_at", "attachments", "integrity_status", "integrity_detail", "verified_at", "updated_at",
	})
	if replaced {
		assignments = append(assignments, clause.Assignment{
			Column: clause.Column{Name: "attempts"},
			Value:  gorm.Expr("submission_indices.attempts + 1"),
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: assignments,
	}).Create(entry).Error
}

func (r *submissionIndexRepository) Get(ctx context.Context, assignmentID, studentID string) (models.SubmissionIndex, error) {
	var entry models.SubmissionIndex
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&entry).Error
	if err != nil {
		return models.SubmissionIndex{}, err
	}
	return entry, nil
}

func (r *submissionIndexRepository) List(ctx context.Context, filter SubmissionIndexFilter) ([]models.SubmissionIndex, error) {
	query := r.db.WithContext(ctx).Model(&models.SubmissionIndex{})

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.IntegrityStatus != nil {
		query = query.Where("integrity_status = ?", *filter.IntegrityStatus)
	}

	var entries []models.SubmissionIndex
	if err := query.Order("assignment_id ASC, student_id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *submissionIndexRepository) MarkVerification(ctx context.Context, assignmentID, studentID, status, detail string, verifiedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.SubmissionIndex{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Updates(map[string]interface{}{
			"integrity_status": status,
			"integrity_detail": detail,
			"verified_at":      verifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
