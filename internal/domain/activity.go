package domain

import "time"

// ActivityKind discriminates the current focus state.
type ActivityKind int

const (
	// ActivityNothing means no current focus; the scheduler re-selects on
	// the next tick.
	ActivityNothing ActivityKind = iota

	// ActivityWorking means a focus session on one task snapshot.
	ActivityWorking

	// ActivityOnBreak means a rest session.
	ActivityOnBreak
)

// Activity is the engine's current focus state: nothing, a work session on
// one task, or a break. Exactly one is active at a time. Task is non-nil only
// while working and holds a snapshot that may go stale until an explicit
// refresh replaces it.
type Activity struct {
	Kind     ActivityKind
	Task     *Task
	Interval Interval
}

// NothingActivity returns the idle state.
func NothingActivity() Activity {
	return Activity{Kind: ActivityNothing}
}

// WorkingActivity starts a focus session on a copy of the given task.
func WorkingActivity(task Task, now time.Time, length time.Duration) Activity {
	snapshot := task
	return Activity{
		Kind:     ActivityWorking,
		Task:     &snapshot,
		Interval: NewInterval(now, length),
	}
}

// BreakActivity starts a rest session.
func BreakActivity(now time.Time, length time.Duration) Activity {
	return Activity{
		Kind:     ActivityOnBreak,
		Interval: NewInterval(now, length),
	}
}

// IsNothing reports whether no activity is in progress.
func (a Activity) IsNothing() bool {
	return a.Kind == ActivityNothing
}

// IsWorking reports whether a task focus session is in progress.
func (a Activity) IsWorking() bool {
	return a.Kind == ActivityWorking
}

// IsOnBreak reports whether a rest session is in progress.
func (a Activity) IsOnBreak() bool {
	return a.Kind == ActivityOnBreak
}

// Label returns the display line for the activity.
func (a Activity) Label() string {
	switch a.Kind {
	case ActivityWorking:
		return a.Task.Label()
	case ActivityOnBreak:
		return "taking a break"
	default:
		return "nothing to do right now"
	}
}

// ReplaceTask swaps the held task snapshot, leaving timing untouched.
// No-op unless working.
func (a *Activity) ReplaceTask(task Task) {
	if a.Kind != ActivityWorking {
		return
	}
	snapshot := task
	a.Task = &snapshot
}
