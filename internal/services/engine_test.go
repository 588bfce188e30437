package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskroll/internal/domain"
	"taskroll/internal/ports"
)

// fakeTracker is an in-memory ports.TaskTracker for engine tests.
type fakeTracker struct {
	tasks       []domain.Task
	fetchErr    error
	completeErr error

	completed []string
	modified  []string
	fetched   []string
}

var _ ports.TaskTracker = (*fakeTracker)(nil)

func (f *fakeTracker) FetchCandidates(ctx context.Context) ([]domain.Task, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.tasks, nil
}

func (f *fakeTracker) FetchOne(ctx context.Context, uuid string) (*domain.Task, error) {
	f.fetched = append(f.fetched, uuid)
	for i := range f.tasks {
		if f.tasks[i].UUID == uuid {
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, domain.ErrNoCurrentTask
}

func (f *fakeTracker) MarkComplete(ctx context.Context, uuid string) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, uuid)
	return nil
}

func (f *fakeTracker) Modify(ctx context.Context, uuid string, mutations ...string) error {
	f.modified = append(f.modified, uuid)
	return nil
}

// fakeHistoryRepo is an in-memory ports.HistoryRepository.
type fakeHistoryRepo struct {
	saved   []*domain.FocusRecord
	updated []*domain.FocusRecord
}

var _ ports.HistoryRepository = (*fakeHistoryRepo)(nil)

func (f *fakeHistoryRepo) Save(ctx context.Context, record *domain.FocusRecord) error {
	copied := *record
	f.saved = append(f.saved, &copied)
	return nil
}

func (f *fakeHistoryRepo) Update(ctx context.Context, record *domain.FocusRecord) error {
	copied := *record
	f.updated = append(f.updated, &copied)
	return nil
}

func (f *fakeHistoryRepo) FindRecent(ctx context.Context, since time.Time) ([]*domain.FocusRecord, error) {
	return f.saved, nil
}

func (f *fakeHistoryRepo) FindByTask(ctx context.Context, taskUUID string) ([]*domain.FocusRecord, error) {
	return nil, nil
}

func (f *fakeHistoryRepo) PeriodStats(ctx context.Context, start, end time.Time) (*domain.PeriodStats, error) {
	return &domain.PeriodStats{Start: start, End: end, ByProject: map[string]time.Duration{}}, nil
}

func (f *fakeHistoryRepo) Close() error { return nil }

func singleTask() []domain.Task {
	return []domain.Task{{ID: 1, UUID: "u-1", Description: "the task", Project: "acme", Urgency: 5.0}}
}

func newTestEngine(tracker ports.TaskTracker, history *HistoryService, autoLog bool) *Engine {
	selector := NewSelector(rand.New(rand.NewSource(42)), 10*time.Minute, 10*time.Minute)
	commands := InteractionCommands{TaskBin: "task", DeferMutation: "wait:+1d"}
	return NewEngine(tracker, selector, history, commands, autoLog)
}

// mustWork drives the engine into a work activity. One reroll lands on a
// task or on a break; a second reroll from a break cannot land on a break
// again, so two at most are needed.
func mustWork(t *testing.T, e *Engine, now time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.Reroll(ctx, now))
	if e.Activity().IsOnBreak() {
		require.NoError(t, e.Reroll(ctx, now))
	}
	require.True(t, e.Activity().IsWorking())
}

func TestEngine_OnTick_SelectsWhenIdle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	require.True(t, e.Activity().IsNothing())
	require.NoError(t, e.OnTick(ctx, now))

	activity := e.Activity()
	assert.False(t, activity.IsNothing())
	assert.Equal(t, now, activity.Interval.StartedAt)
}

func TestEngine_OnTick_NeverInterrupts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	before := e.Activity()

	// Well past the planned length; the overdue interval must keep
	// running until the user acts.
	require.NoError(t, e.OnTick(ctx, now.Add(3*time.Hour)))

	after := e.Activity()
	assert.Equal(t, before.Kind, after.Kind)
	assert.Equal(t, before.Interval.StartedAt, after.Interval.StartedAt)
}

func TestEngine_OnTick_FetchFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	fetchErr := errors.New("task binary not found")
	tracker := &fakeTracker{fetchErr: fetchErr}
	e := newTestEngine(tracker, nil, false)

	err := e.OnTick(ctx, now)
	require.ErrorIs(t, err, fetchErr)
	assert.True(t, e.Activity().IsNothing())
}

func TestEngine_Complete_MarksDoneThenMovesOn(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	later := now.Add(12 * time.Minute)

	require.NoError(t, e.Complete(ctx, later))
	assert.Equal(t, []string{"u-1"}, tracker.completed)
	assert.Equal(t, later, e.Activity().Interval.StartedAt)
}

func TestEngine_Complete_TrackerFailureKeepsActivity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	before := e.Activity()

	completeErr := errors.New("tracker down")
	tracker.completeErr = completeErr

	err := e.Complete(ctx, now.Add(time.Minute))
	require.ErrorIs(t, err, completeErr)

	after := e.Activity()
	assert.True(t, after.IsWorking())
	assert.Equal(t, before.Task.UUID, after.Task.UUID)
	assert.Equal(t, before.Interval.StartedAt, after.Interval.StartedAt)
	assert.Empty(t, tracker.completed)
}

func TestEngine_Complete_IdleOnlyReselects(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	later := now.Add(5 * time.Minute)
	require.NoError(t, e.Complete(ctx, later))

	assert.Empty(t, tracker.completed, "nothing to mark done without a current task")
	assert.Equal(t, later, e.Activity().Interval.StartedAt)
}

func TestEngine_Reroll_DiscardsMidInterval(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	later := now.Add(2 * time.Minute)

	require.NoError(t, e.Reroll(ctx, later))
	assert.Equal(t, later, e.Activity().Interval.StartedAt)
	assert.Empty(t, tracker.completed, "reroll must not touch the tracker task")
}

func TestEngine_Reroll_SelectionFailureKeepsActivity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	tracker.tasks = nil

	before := e.Activity()
	err := e.Reroll(ctx, now.Add(time.Minute))
	if err == nil {
		// The die landed on the break sentinel; from a break the work
		// path is forced, so the next reroll must fail.
		before = e.Activity()
		err = e.Reroll(ctx, now.Add(2*time.Minute))
	}

	require.ErrorIs(t, err, domain.ErrNoTaskAvailable)

	after := e.Activity()
	assert.Equal(t, before.Kind, after.Kind)
	assert.Equal(t, before.Interval.StartedAt, after.Interval.StartedAt)
}

func TestEngine_Extend(t *testing.T) {
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	e.Extend()
	assert.True(t, e.Activity().IsNothing(), "extend must be a no-op when idle")

	mustWork(t, e, now)
	original := e.Activity().Interval.Original

	e.Extend()
	e.Extend()
	assert.Equal(t, 3*original, e.Activity().Interval.Planned)
	assert.Equal(t, original, e.Activity().Interval.Original)
}

func TestEngine_Refresh_ReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	started := e.Activity().Interval.StartedAt

	tracker.tasks[0].Description = "renamed in the tracker"
	require.NoError(t, e.Refresh(ctx, now.Add(time.Minute)))

	activity := e.Activity()
	assert.Equal(t, "renamed in the tracker", activity.Task.Description)
	assert.Equal(t, started, activity.Interval.StartedAt, "refresh must leave timing untouched")
	assert.Equal(t, []string{"u-1"}, tracker.fetched)
}

func TestEngine_RequestInteraction_StagesAndMovesOn(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	later := now.Add(time.Minute)

	require.NoError(t, e.RequestInteraction(ctx, later, domain.InteractionEdit))
	assert.Equal(t, later, e.Activity().Interval.StartedAt, "the engine must move on before the handoff runs")

	staged := e.TakeInteraction()
	require.NotNil(t, staged)
	assert.Equal(t, domain.InteractionEdit, staged.Kind)
	assert.Equal(t, "task", staged.Command)
	assert.Equal(t, []string{"u-1", "edit"}, staged.Args)

	assert.Nil(t, e.TakeInteraction(), "the mailbox drains on the first take")
}

func TestEngine_RequestInteraction_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	require.NoError(t, e.RequestInteraction(ctx, now, domain.InteractionEdit))

	if !e.Activity().IsWorking() {
		mustWork(t, e, now)
	}
	require.NoError(t, e.RequestInteraction(ctx, now, domain.InteractionDefer))

	staged := e.TakeInteraction()
	require.NotNil(t, staged)
	assert.Equal(t, domain.InteractionDefer, staged.Kind)
	assert.Equal(t, []string{"u-1", "modify", "wait:+1d"}, staged.Args)
}

func TestEngine_RequestInteraction_OpenUnconfigured(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	mustWork(t, e, now)
	before := e.Activity()

	err := e.RequestInteraction(ctx, now, domain.InteractionOpen)
	require.ErrorIs(t, err, ErrInteractionUnavailable)
	assert.Nil(t, e.TakeInteraction())
	assert.Equal(t, before.Interval.StartedAt, e.Activity().Interval.StartedAt)
}

func TestEngine_RequestInteraction_OpenAppendsUUID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	selector := NewSelector(rand.New(rand.NewSource(42)), 10*time.Minute, 10*time.Minute)
	commands := InteractionCommands{
		TaskBin: "task",
		Open:    []string{"taskopen", "--active"},
	}
	e := NewEngine(tracker, selector, nil, commands, false)

	mustWork(t, e, now)
	require.NoError(t, e.RequestInteraction(ctx, now, domain.InteractionOpen))

	staged := e.TakeInteraction()
	require.NotNil(t, staged)
	assert.Equal(t, "taskopen", staged.Command)
	assert.Equal(t, []string{"--active", "u-1"}, staged.Args)
}

func TestEngine_RequestInteraction_IdleIsNoop(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	e := newTestEngine(tracker, nil, false)

	require.NoError(t, e.RequestInteraction(ctx, now, domain.InteractionEdit))
	assert.Nil(t, e.TakeInteraction())
	assert.True(t, e.Activity().IsNothing())
}

func TestEngine_AutoLog_RecordsLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	repo := &fakeHistoryRepo{}
	e := newTestEngine(tracker, NewHistoryService(repo, nil), true)

	mustWork(t, e, now)
	require.True(t, e.Logging())
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "u-1", repo.saved[0].TaskUUID)
	assert.Equal(t, "acme", repo.saved[0].Project)

	later := now.Add(10 * time.Minute)
	require.NoError(t, e.Complete(ctx, later))

	require.NotEmpty(t, repo.updated)
	closed := repo.updated[0]
	assert.Equal(t, domain.OutcomeCompleted, closed.Outcome)
	require.NotNil(t, closed.EndedAt)
	assert.Equal(t, later, *closed.EndedAt)
}

func TestEngine_ManualFocusLog(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	repo := &fakeHistoryRepo{}
	e := newTestEngine(tracker, NewHistoryService(repo, nil), false)

	mustWork(t, e, now)
	assert.False(t, e.Logging(), "auto_log off must not open a record")

	require.NoError(t, e.StartFocusLog(ctx))
	require.True(t, e.Logging())
	require.NoError(t, e.StartFocusLog(ctx))
	assert.Len(t, repo.saved, 1, "a second start must not open a duplicate record")

	require.NoError(t, e.Reroll(ctx, now.Add(time.Minute)))
	require.NotEmpty(t, repo.updated)
	assert.Equal(t, domain.OutcomeRerolled, repo.updated[0].Outcome)
}

func TestEngine_Shutdown_ClosesOpenRecord(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{tasks: singleTask()}
	repo := &fakeHistoryRepo{}
	e := newTestEngine(tracker, NewHistoryService(repo, nil), true)

	mustWork(t, e, now)
	require.True(t, e.Logging())

	require.NoError(t, e.Shutdown(ctx, now.Add(4*time.Minute)))
	assert.False(t, e.Logging())
	require.NotEmpty(t, repo.updated)
	assert.Equal(t, domain.OutcomeAbandoned, repo.updated[len(repo.updated)-1].Outcome)
}
