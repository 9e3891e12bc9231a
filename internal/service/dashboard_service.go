package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/chatty-edu-api/internal/dto"
	"github.com/noah-isme/chatty-edu-api/internal/models"
	"github.com/noah-isme/chatty-edu-api/internal/repository"
)

// DashboardService lists exported submissions for the teacher.
type DashboardService interface {
	Summaries(ctx context.Context, filter dto.SubmissionSummaryFilter) ([]dto.SubmissionSummaryResponse, error)
}

type dashboardService struct {
	store  repository.SubmissionStore
	index  repository.SubmissionIndexRepository
	cache  *DashboardCache
	logger zerolog.Logger
}

// NewDashboardService builds the dashboard reader. index and cache may be nil.
func NewDashboardService(store repository.SubmissionStore, index repository.SubmissionIndexRepository, cache *DashboardCache, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		store:  store,
		index:  index,
		cache:  cache,
		logger: logger.With().Str("component", "dashboard_service").Logger(),
	}
}

// Summaries projects every readable submission file. Chains are not
// re-verified here; the integrity status shown is the last recorded one.
func (s *dashboardService) Summaries(ctx context.Context, filter dto.SubmissionSummaryFilter) ([]dto.SubmissionSummaryResponse, error) {
	rows, ok := s.cache.get(ctx)
	if !ok {
		var err error
		rows, err = s.build(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.set(ctx, rows)
	}

	return filterSummaries(rows, filter), nil
}

func (s *dashboardService) build(ctx context.Context) ([]dto.SubmissionSummaryResponse, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	indexed := map[string]models.SubmissionIndex{}
	if s.index != nil {
		entries, err := s.index.List(ctx, repository.SubmissionIndexFilter{})
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to read submission index")
		}
		for _, entry := range entries {
			indexed[indexKey(entry.AssignmentID, entry.StudentID)] = entry
		}
	}

	rows := make([]dto.SubmissionSummaryResponse, 0, len(records))
	for _, record := range records {
		var entry *models.SubmissionIndex
		if found, ok := indexed[indexKey(record.AssignmentID, record.StudentID)]; ok {
			entry = &found
		}

		row := dto.NewSubmissionSummaryResponse(repository.Summarize(record), entry)
		if entry == nil || row.FinalHash != record.FinalHash {
			row.FinalHash = record.FinalHash
			if entry != nil {
				// The file changed since it was indexed.
				row.IntegrityStatus = models.IntegrityUnverified
				row.VerifiedAt = nil
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func filterSummaries(rows []dto.SubmissionSummaryResponse, filter dto.SubmissionSummaryFilter) []dto.SubmissionSummaryResponse {
	if filter.AssignmentID == "" && filter.StudentID == "" {
		return rows
	}

	filtered := make([]dto.SubmissionSummaryResponse, 0, len(rows))
	for _, row := range rows {
		if filter.AssignmentID != "" && row.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && row.StudentID != filter.StudentID {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func indexKey(assignmentID, studentID string) string {
	return assignmentID + "\x00" + studentID
}
