package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskroll/internal/domain"
	"taskroll/internal/ports"
)

// ErrInteractionUnavailable is returned when a user action needs an external
// command that is not configured.
var ErrInteractionUnavailable = errors.New("interaction command not configured")

// InteractionCommands holds the external programs invoked during a handoff.
type InteractionCommands struct {
	// TaskBin is the tracker binary, used for the edit and defer handoffs.
	TaskBin string

	// DeferMutation is the field mutation applied by the defer action,
	// e.g. "wait:+1d".
	DeferMutation string

	// Open launches the task in an external viewer; the task UUID is
	// appended as the final argument.
	Open []string

	// Breakdown launches the breakdown tool; the task UUID is appended as
	// the final argument.
	Breakdown []string
}

// Engine is the activity state machine. It owns exactly one Activity and the
// single-slot interaction mailbox; all mutation happens on the event loop
// goroutine, so no locking is needed.
type Engine struct {
	tracker  ports.TaskTracker
	selector *Selector
	history  *HistoryService
	commands InteractionCommands

	activity domain.Activity
	pending  *domain.Interaction
	record   *domain.FocusRecord
	autoLog  bool
}

// NewEngine creates an engine starting in the idle state. history may be nil
// when focus logging is disabled.
func NewEngine(tracker ports.TaskTracker, selector *Selector, history *HistoryService, commands InteractionCommands, autoLog bool) *Engine {
	return &Engine{
		tracker:  tracker,
		selector: selector,
		history:  history,
		commands: commands,
		activity: domain.NothingActivity(),
		autoLog:  autoLog,
	}
}

// Activity returns the current focus state for rendering.
func (e *Engine) Activity() domain.Activity {
	return e.activity
}

// OnTick re-selects when idle. Ticks never interrupt an in-progress
// activity: an overdue interval keeps displaying until the user acts.
func (e *Engine) OnTick(ctx context.Context, now time.Time) error {
	if !e.activity.IsNothing() {
		return nil
	}
	return e.selectNext(ctx, now, domain.OutcomeAbandoned)
}

// Complete marks the current task done in the tracker, then immediately
// selects the next activity. A failed mutation is returned before any new
// activity is installed. On a break or idle it only re-selects.
func (e *Engine) Complete(ctx context.Context, now time.Time) error {
	if e.activity.IsWorking() {
		if err := e.tracker.MarkComplete(ctx, e.activity.Task.UUID); err != nil {
			return fmt.Errorf("could not mark task done: %w", err)
		}
		return e.selectNext(ctx, now, domain.OutcomeCompleted)
	}
	return e.selectNext(ctx, now, domain.OutcomeAbandoned)
}

// Reroll unconditionally discards the current activity and selects a new
// one, even mid-interval. No tracker mutation occurs.
func (e *Engine) Reroll(ctx context.Context, now time.Time) error {
	return e.selectNext(ctx, now, domain.OutcomeRerolled)
}

// Extend grows the current interval by one original increment. No-op when
// idle.
func (e *Engine) Extend() {
	if e.activity.IsNothing() {
		return
	}
	e.activity.Interval.Extend()
}

// Refresh replaces the held task snapshot with the tracker's current state,
// leaving timing untouched. Used after a handoff that may have altered the
// task. No-op unless working.
func (e *Engine) Refresh(ctx context.Context, now time.Time) error {
	if !e.activity.IsWorking() {
		return nil
	}

	task, err := e.tracker.FetchOne(ctx, e.activity.Task.UUID)
	if err != nil {
		return fmt.Errorf("could not refresh task: %w", err)
	}

	e.activity.ReplaceTask(*task)
	return nil
}

// RequestInteraction stages a deferred external invocation for the current
// task and immediately moves on to the next activity, so the display is not
// blocked behind the interactive session. A second request before the first
// is consumed overwrites it.
//
// Because re-selection happens before the staged program actually runs, the
// same task can be re-selected while its edit is still pending. Known
// limitation, kept on purpose.
func (e *Engine) RequestInteraction(ctx context.Context, now time.Time, kind domain.InteractionKind) error {
	if !e.activity.IsWorking() {
		return nil
	}

	interaction, err := e.buildInteraction(kind, e.activity.Task.UUID)
	if err != nil {
		return err
	}

	e.pending = interaction
	return e.selectNext(ctx, now, domain.OutcomeAbandoned)
}

// TakeInteraction drains the single-slot mailbox, returning nil when nothing
// is staged.
func (e *Engine) TakeInteraction() *domain.Interaction {
	interaction := e.pending
	e.pending = nil
	return interaction
}

// StartFocusLog opens a history record for the current work session. Used
// when automatic logging is off; no-op when idle, on a break, or already
// logging.
func (e *Engine) StartFocusLog(ctx context.Context) error {
	if e.history == nil || e.record != nil || !e.activity.IsWorking() {
		return nil
	}

	record, err := e.history.Begin(ctx, e.activity.Task, e.activity.Interval)
	if err != nil {
		return err
	}
	e.record = record
	return nil
}

// Logging reports whether a focus record is open for the current activity.
func (e *Engine) Logging() bool {
	return e.record != nil
}

// Shutdown finalizes any open focus record. Called once when the run ends.
func (e *Engine) Shutdown(ctx context.Context, now time.Time) error {
	return e.closeRecord(ctx, now, domain.OutcomeAbandoned)
}

// selectNext fetches fresh candidates and installs the selector's pick. On a
// selection failure the current activity is left unchanged. outcome is how
// the displaced activity's focus record, if any, is closed.
func (e *Engine) selectNext(ctx context.Context, now time.Time, outcome domain.FocusOutcome) error {
	tasks, err := e.tracker.FetchCandidates(ctx)
	if err != nil {
		return fmt.Errorf("could not get tasks: %w", err)
	}

	next, err := e.selector.Select(now, tasks, e.activity.IsOnBreak())
	if err != nil {
		return err
	}

	if err := e.closeRecord(ctx, now, outcome); err != nil {
		return err
	}
	e.activity = next

	if e.autoLog && next.IsWorking() && e.history != nil {
		record, err := e.history.Begin(ctx, next.Task, next.Interval)
		if err != nil {
			return err
		}
		e.record = record
	}

	return nil
}

func (e *Engine) closeRecord(ctx context.Context, now time.Time, outcome domain.FocusOutcome) error {
	if e.record == nil {
		return nil
	}

	record := e.record
	e.record = nil
	if e.history == nil {
		return nil
	}
	return e.history.Finish(ctx, record, now, outcome)
}

func (e *Engine) buildInteraction(kind domain.InteractionKind, uuid string) (*domain.Interaction, error) {
	switch kind {
	case domain.InteractionEdit:
		return &domain.Interaction{
			Kind:    kind,
			Command: e.commands.TaskBin,
			Args:    []string{uuid, "edit"},
		}, nil

	case domain.InteractionDefer:
		mutation := e.commands.DeferMutation
		if mutation == "" {
			mutation = "wait:+1d"
		}
		return &domain.Interaction{
			Kind:    kind,
			Command: e.commands.TaskBin,
			Args:    []string{uuid, "modify", mutation},
		}, nil

	case domain.InteractionOpen:
		if len(e.commands.Open) == 0 {
			return nil, fmt.Errorf("%w: open", ErrInteractionUnavailable)
		}
		return &domain.Interaction{
			Kind:    kind,
			Command: e.commands.Open[0],
			Args:    append(append([]string{}, e.commands.Open[1:]...), uuid),
		}, nil

	case domain.InteractionBreakdown:
		if len(e.commands.Breakdown) == 0 {
			return nil, fmt.Errorf("%w: breakdown", ErrInteractionUnavailable)
		}
		return &domain.Interaction{
			Kind:    kind,
			Command: e.commands.Breakdown[0],
			Args:    append(append([]string{}, e.commands.Breakdown[1:]...), uuid),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrInteractionUnavailable, kind)
	}
}
