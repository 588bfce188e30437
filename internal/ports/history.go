package ports

import (
	"context"
	"time"

	"taskroll/internal/domain"
)

// HistoryRepository persists focus session records.
// This is a driven port (implemented by adapters).
type HistoryRepository interface {
	// Save persists a new focus record.
	Save(ctx context.Context, record *domain.FocusRecord) error

	// Update rewrites an existing record (used to finalize outcomes).
	Update(ctx context.Context, record *domain.FocusRecord) error

	// FindRecent returns records started at or after the given time, newest
	// first.
	FindRecent(ctx context.Context, since time.Time) ([]*domain.FocusRecord, error)

	// FindByTask returns all records for one task UUID, newest first.
	FindByTask(ctx context.Context, taskUUID string) ([]*domain.FocusRecord, error)

	// PeriodStats aggregates history over [start, end).
	PeriodStats(ctx context.Context, start, end time.Time) (*domain.PeriodStats, error)

	// Close releases the underlying store.
	Close() error
}
