package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"taskroll/internal/domain"
	"taskroll/internal/ports"
)

// historyRepository implements ports.HistoryRepository using SQLite.
type historyRepository struct {
	db *sql.DB
}

// Ensure historyRepository implements ports.HistoryRepository.
var _ ports.HistoryRepository = (*historyRepository)(nil)

// Save persists a new focus record.
func (r *historyRepository) Save(ctx context.Context, record *domain.FocusRecord) error {
	query := `
		INSERT INTO focus_records (
			id, task_uuid, description, project, planned_ms,
			started_at, ended_at, outcome, git_branch, git_commit
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.TaskUUID,
		record.Description,
		record.Project,
		record.Planned.Milliseconds(),
		record.StartedAt,
		record.EndedAt,
		nullableOutcome(record.Outcome),
		record.GitBranch,
		record.GitCommit,
	)
	if err != nil {
		return fmt.Errorf("failed to save focus record: %w", err)
	}
	return nil
}

// Update rewrites an existing record.
func (r *historyRepository) Update(ctx context.Context, record *domain.FocusRecord) error {
	query := `
		UPDATE focus_records
		SET ended_at = ?, outcome = ?, planned_ms = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		record.EndedAt,
		nullableOutcome(record.Outcome),
		record.Planned.Milliseconds(),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update focus record: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("focus record %s not found", record.ID)
	}
	return nil
}

// FindRecent returns records started at or after since, newest first.
func (r *historyRepository) FindRecent(ctx context.Context, since time.Time) ([]*domain.FocusRecord, error) {
	query := `
		SELECT id, task_uuid, description, project, planned_ms,
		       started_at, ended_at, outcome, git_branch, git_commit
		FROM focus_records
		WHERE started_at >= ?
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query focus records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByTask returns all records for one task UUID, newest first.
func (r *historyRepository) FindByTask(ctx context.Context, taskUUID string) ([]*domain.FocusRecord, error) {
	query := `
		SELECT id, task_uuid, description, project, planned_ms,
		       started_at, ended_at, outcome, git_branch, git_commit
		FROM focus_records
		WHERE task_uuid = ?
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, taskUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query focus records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// PeriodStats aggregates history over [start, end).
func (r *historyRepository) PeriodStats(ctx context.Context, start, end time.Time) (*domain.PeriodStats, error) {
	records, err := r.FindRecent(ctx, start)
	if err != nil {
		return nil, err
	}

	stats := &domain.PeriodStats{
		Start:     start,
		End:       end,
		ByProject: make(map[string]time.Duration),
	}

	for _, record := range records {
		if !record.StartedAt.Before(end) || record.EndedAt == nil {
			continue
		}

		stats.Sessions++
		focus := record.EndedAt.Sub(record.StartedAt)
		stats.FocusTime += focus

		switch record.Outcome {
		case domain.OutcomeCompleted:
			stats.Completed++
		case domain.OutcomeRerolled:
			stats.Rerolled++
		}

		project := record.Project
		if project == "" {
			project = "(none)"
		}
		stats.ByProject[project] += focus
	}

	return stats, nil
}

// Close closes the database connection.
func (r *historyRepository) Close() error {
	return r.db.Close()
}

func scanRecords(rows *sql.Rows) ([]*domain.FocusRecord, error) {
	var records []*domain.FocusRecord

	for rows.Next() {
		var record domain.FocusRecord
		var plannedMS int64
		var endedAt sql.NullTime
		var outcome, project, branch, commit sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.TaskUUID,
			&record.Description,
			&project,
			&plannedMS,
			&record.StartedAt,
			&endedAt,
			&outcome,
			&branch,
			&commit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan focus record: %w", err)
		}

		record.Planned = time.Duration(plannedMS) * time.Millisecond
		record.Project = project.String
		record.GitBranch = branch.String
		record.GitCommit = commit.String
		if endedAt.Valid {
			ended := endedAt.Time
			record.EndedAt = &ended
		}
		if outcome.Valid {
			record.Outcome = domain.FocusOutcome(outcome.String)
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate focus records: %w", err)
	}
	return records, nil
}

func nullableOutcome(outcome domain.FocusOutcome) *string {
	if outcome == "" {
		return nil
	}
	s := string(outcome)
	return &s
}
