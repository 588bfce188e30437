package domain

import (
	"time"

	"github.com/google/uuid"
)

// newRecordID creates a unique identifier for a focus record.
func newRecordID() string {
	return uuid.New().String()
}

// FocusOutcome records how a logged focus session ended.
type FocusOutcome string

const (
	OutcomeCompleted FocusOutcome = "completed"
	OutcomeRerolled  FocusOutcome = "rerolled"
	OutcomeAbandoned FocusOutcome = "abandoned"
)

// FocusRecord is the history entry written for each focus session. Unlike
// the in-memory Activity it survives the run and feeds the stats and export
// commands.
type FocusRecord struct {
	ID          string
	TaskUUID    string
	Description string
	Project     string
	Planned     time.Duration
	StartedAt   time.Time
	EndedAt     *time.Time
	Outcome     FocusOutcome
	GitBranch   string
	GitCommit   string
}

// NewFocusRecord opens a history entry for a freshly selected work activity.
func NewFocusRecord(task *Task, interval Interval) *FocusRecord {
	return &FocusRecord{
		ID:          newRecordID(),
		TaskUUID:    task.UUID,
		Description: task.Description,
		Project:     task.Project,
		Planned:     interval.Planned,
		StartedAt:   interval.StartedAt,
	}
}

// Finish closes the record with the given outcome.
func (r *FocusRecord) Finish(now time.Time, outcome FocusOutcome) {
	ended := now
	r.EndedAt = &ended
	r.Outcome = outcome
}

// SetGitContext stamps working-copy information on the record.
func (r *FocusRecord) SetGitContext(branch, commit string) {
	r.GitBranch = branch
	r.GitCommit = commit
}

// FocusTime returns the actual time spent, or time-so-far for an open record.
func (r *FocusRecord) FocusTime(now time.Time) time.Duration {
	if r.EndedAt != nil {
		return r.EndedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// PeriodStats aggregates focus history over a time window.
type PeriodStats struct {
	Label     string
	Start     time.Time
	End       time.Time
	Sessions  int
	Completed int
	Rerolled  int
	FocusTime time.Duration
	ByProject map[string]time.Duration
}

// CompletionRate returns the fraction of sessions that ended in a completed
// task.
func (s PeriodStats) CompletionRate() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Sessions)
}
