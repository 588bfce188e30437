// Package ports defines the interfaces (driven and driving ports) between
// the scheduling core and external infrastructure, following hexagonal
// architecture principles.
package ports

import (
	"context"

	"taskroll/internal/domain"
)

// TaskTracker is the boundary to the external task tracker. Every call is a
// blocking subprocess invocation from the engine's point of view; failures
// propagate and are never retried.
// This is a driven port (implemented by adapters).
type TaskTracker interface {
	// FetchCandidates exports the tasks eligible for selection under the
	// configured filters, with date-driven urgency coefficients zeroed so
	// the score reflects only the tracker's residual urgency signal.
	FetchCandidates(ctx context.Context) ([]domain.Task, error)

	// FetchOne retrieves the current snapshot of a single task.
	FetchOne(ctx context.Context, uuid string) (*domain.Task, error)

	// MarkComplete marks a task done in the tracker.
	MarkComplete(ctx context.Context, uuid string) error

	// Modify applies field mutations to a task, e.g. "wait:+1d" to defer it.
	Modify(ctx context.Context, uuid string, mutations ...string) error
}
