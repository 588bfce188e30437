package domain

import (
	"fmt"
	"time"
)

// Interval is the timing triple shared by work and break activities.
// StartedAt is fixed at creation; Planned only ever grows, in increments of
// Original. The interval is advisory for display: it never triggers a state
// transition on its own.
type Interval struct {
	StartedAt time.Time
	Planned   time.Duration
	Original  time.Duration
}

// NewInterval creates an interval starting now with the given length as both
// planned and original duration.
func NewInterval(now time.Time, length time.Duration) Interval {
	return Interval{
		StartedAt: now,
		Planned:   length,
		Original:  length,
	}
}

// Elapsed returns how long the interval has been running.
func (i Interval) Elapsed(now time.Time) time.Duration {
	return now.Sub(i.StartedAt)
}

// Remaining returns the time left in the interval. It goes negative once the
// interval is overdue.
func (i Interval) Remaining(now time.Time) time.Duration {
	return i.Planned - i.Elapsed(now)
}

// Overdue reports whether the planned length has elapsed.
func (i Interval) Overdue(now time.Time) bool {
	return i.Remaining(now) < 0
}

// Progress returns the completion ratio clamped to [0, 1].
func (i Interval) Progress(now time.Time) float64 {
	if i.Planned <= 0 {
		return 1
	}
	p := float64(i.Elapsed(now)) / float64(i.Planned)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Extend grows the planned length by one original increment. Repeated calls
// are additive: three extensions of a 10 minute interval leave a 40 minute
// total budget.
func (i *Interval) Extend() {
	i.Planned += i.Original
}

// FormatRemaining renders the remaining time as M:SS, with a leading minus
// sign once overdue.
func (i Interval) FormatRemaining(now time.Time) string {
	remaining := i.Remaining(now)

	sign := ""
	if remaining < 0 {
		sign = "-"
		remaining = -remaining
	}

	minutes := int(remaining / time.Minute)
	seconds := int(remaining/time.Second) % 60
	return fmt.Sprintf("%s%d:%02d", sign, minutes, seconds)
}
