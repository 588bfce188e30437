package services

import (
	"context"
	"fmt"
	"time"

	"taskroll/internal/domain"
	"taskroll/internal/ports"
)

// HistoryService records focus sessions and answers stats queries. Git
// context is best-effort: a missing repository never blocks logging.
type HistoryService struct {
	repo ports.HistoryRepository
	git  ports.GitDetector
}

// NewHistoryService creates a history service. git may be nil.
func NewHistoryService(repo ports.HistoryRepository, git ports.GitDetector) *HistoryService {
	return &HistoryService{repo: repo, git: git}
}

// Begin opens and persists a focus record for a freshly selected task.
func (s *HistoryService) Begin(ctx context.Context, task *domain.Task, interval domain.Interval) (*domain.FocusRecord, error) {
	record := domain.NewFocusRecord(task, interval)

	if s.git != nil && s.git.IsAvailable() {
		if info, err := s.git.Detect(ctx, ""); err == nil && info != nil {
			record.SetGitContext(info.Branch, info.Commit)
		}
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("could not save focus record: %w", err)
	}
	return record, nil
}

// Finish closes a record with the given outcome and persists it.
func (s *HistoryService) Finish(ctx context.Context, record *domain.FocusRecord, now time.Time, outcome domain.FocusOutcome) error {
	record.Finish(now, outcome)
	if err := s.repo.Update(ctx, record); err != nil {
		return fmt.Errorf("could not finalize focus record: %w", err)
	}
	return nil
}

// Recent returns focus records started at or after since, newest first.
func (s *HistoryService) Recent(ctx context.Context, since time.Time) ([]*domain.FocusRecord, error) {
	return s.repo.FindRecent(ctx, since)
}

// TaskHistory returns all focus records for one task.
func (s *HistoryService) TaskHistory(ctx context.Context, taskUUID string) ([]*domain.FocusRecord, error) {
	return s.repo.FindByTask(ctx, taskUUID)
}

// PeriodStats aggregates history over [start, end) under a display label.
func (s *HistoryService) PeriodStats(ctx context.Context, start, end time.Time, label string) (*domain.PeriodStats, error) {
	stats, err := s.repo.PeriodStats(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("could not aggregate focus history: %w", err)
	}
	stats.Label = label
	return stats, nil
}

// WeekStats aggregates the current week (Monday start).
func (s *HistoryService) WeekStats(ctx context.Context, now time.Time) (*domain.PeriodStats, error) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(now.Year(), now.Month(), now.Day()-(weekday-1), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 7)
	return s.PeriodStats(ctx, start, end, fmt.Sprintf("Week of %s", start.Format("Jan 2")))
}

// MonthStats aggregates the current calendar month.
func (s *HistoryService) MonthStats(ctx context.Context, now time.Time) (*domain.PeriodStats, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	return s.PeriodStats(ctx, start, end, now.Format("January 2006"))
}
