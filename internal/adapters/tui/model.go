// Package tui provides the terminal user interface implementation using the
// Bubbletea framework. It is the single event loop driving the scheduling
// engine: every state transition happens synchronously inside Update, so the
// engine needs no locking.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskroll/internal/adapters/notification"
	"taskroll/internal/config"
	"taskroll/internal/domain"
	"taskroll/internal/services"
)

// tickMsg is sent on every one-second timer tick.
type tickMsg time.Time

// execDoneMsg reports a finished interactive handoff.
type execDoneMsg struct {
	kind domain.InteractionKind
	err  error
}

// statusTicks is how many ticks a transient status message stays visible.
const statusTicks = 5

// Model represents the TUI state.
type Model struct {
	ctx      context.Context
	engine   *services.Engine
	notifier *notification.Notifier
	theme    config.ThemeConfig

	width  int
	height int

	status      string
	statusTicks int
	notified    bool

	fatalErr error
}

// NewModel creates a new TUI model around the engine.
func NewModel(ctx context.Context, engine *services.Engine, notifier *notification.Notifier, theme config.ThemeConfig) Model {
	return Model{
		ctx:      ctx,
		engine:   engine,
		notifier: notifier,
		theme:    theme,
	}
}

// FatalErr returns the error that terminated the run, if any.
func (m Model) FatalErr() error {
	return m.fatalErr
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages and applies exactly one engine transition per
// message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tickMsg:
		return m.updateTick(time.Time(msg))

	case execDoneMsg:
		if msg.err != nil {
			// The external program already had the terminal; its own
			// output explains itself. We only refuse to continue.
			m.fatalErr = fmt.Errorf("%s command failed: %w", msg.kind, msg.err)
			return m, tea.Quit
		}
		if err := m.engine.Refresh(m.ctx, time.Now()); err != nil {
			return m.fail(err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "c":
		if err := m.engine.Complete(m.ctx, now); err != nil {
			return m.apply(err)
		}
		return m, nil

	case "r":
		return m.apply(m.engine.Reroll(m.ctx, now))

	case "e":
		m.engine.Extend()
		return m, nil

	case "t":
		return m.interact(now, domain.InteractionEdit)

	case "d":
		return m.interact(now, domain.InteractionDefer)

	case "o":
		return m.interact(now, domain.InteractionOpen)

	case "b":
		return m.interact(now, domain.InteractionBreakdown)

	case "f":
		if err := m.engine.StartFocusLog(m.ctx); err != nil {
			return m.fail(err)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.statusTicks > 0 {
		m.statusTicks--
		if m.statusTicks == 0 {
			m.status = ""
		}
	}

	activity := m.engine.Activity()
	if !activity.IsNothing() {
		if !activity.Interval.Overdue(now) {
			// Extension pulls the interval back out of overdue; arm the
			// notification again.
			m.notified = false
		} else if !m.notified && m.notifier != nil {
			if activity.IsOnBreak() {
				_ = m.notifier.NotifyBreakOver()
			} else {
				_ = m.notifier.NotifyOverdue(activity.Task.Description, activity.Interval.Planned)
			}
			m.notified = true
		}
	}

	if err := m.engine.OnTick(m.ctx, now); err != nil {
		next, cmd := m.apply(err)
		return next, tea.Batch(cmd, tickCmd())
	}

	return m, tickCmd()
}

// interact stages a handoff, then suspends the TUI to run it. The engine has
// already moved on to the next activity by the time the external program
// starts. The mailbox is drained even when that re-selection fails: the
// user's action still runs, the failure only shows as a status line.
func (m Model) interact(now time.Time, kind domain.InteractionKind) (tea.Model, tea.Cmd) {
	err := m.engine.RequestInteraction(m.ctx, now, kind)
	interaction := m.engine.TakeInteraction()

	next, cmd := m.apply(err)
	model := next.(Model)
	if model.fatalErr != nil || interaction == nil {
		return model, cmd
	}
	model.notified = false

	execCmd := exec.CommandContext(model.ctx, interaction.Command, interaction.Args...)
	return model, tea.ExecProcess(execCmd, func(err error) tea.Msg {
		return execDoneMsg{kind: interaction.Kind, err: err}
	})
}

// apply routes an engine error: selection failures and unconfigured
// interactions are transient status messages, everything else ends the run.
func (m Model) apply(err error) (tea.Model, tea.Cmd) {
	switch {
	case err == nil:
		m.status = ""
		m.statusTicks = 0
		m.notified = false
		return m, nil

	case errors.Is(err, domain.ErrNoTaskAvailable):
		m.status = "could not choose a task"
		m.statusTicks = statusTicks
		return m, nil

	case errors.Is(err, services.ErrInteractionUnavailable):
		m.status = err.Error()
		m.statusTicks = statusTicks
		return m, nil

	default:
		return m.fail(err)
	}
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.fatalErr = err
	return m, tea.Quit
}

// tickCmd creates a command that sends a tick message after one second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.fatalErr != nil {
		return ""
	}

	now := time.Now()
	activity := m.engine.Activity()

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle)).MarginBottom(1)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	var sections []string
	sections = append(sections, titleStyle.Render("🎲 taskroll"))

	switch {
	case activity.IsWorking():
		sections = m.viewWorking(sections, activity, now)
	case activity.IsOnBreak():
		sections = m.viewBreak(sections, activity, now)
	default:
		idleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTitle))
		sections = append(sections, idleStyle.Render("Nothing to do right now."))
	}

	if m.status != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorOverdue))
		sections = append(sections, "")
		sections = append(sections, statusStyle.Render(m.status))
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(m.helpLine(activity)))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewWorking(sections []string, activity domain.Activity, now time.Time) []string {
	taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorWork)).Bold(true)

	label := activity.Task.Label()
	if m.engine.Logging() {
		label += " ●"
	}
	sections = append(sections, taskStyle.Render(label))

	if due, ok := activity.Task.DueIn(now); ok {
		dueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp)).Italic(true)
		sections = append(sections, dueStyle.Render(fmt.Sprintf("due in %s", formatCoarse(due))))
	}

	return m.viewCountdown(sections, activity, now, m.theme.WorkGradientStart, m.theme.WorkGradientEnd)
}

func (m Model) viewBreak(sections []string, activity domain.Activity, now time.Time) []string {
	breakStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorBreak)).Bold(true)
	sections = append(sections, breakStyle.Render("☕ taking a break"))
	return m.viewCountdown(sections, activity, now, m.theme.BreakGradientStart, m.theme.BreakGradientEnd)
}

func (m Model) viewCountdown(sections []string, activity domain.Activity, now time.Time, gradStart, gradEnd string) []string {
	interval := activity.Interval

	timerColor := m.theme.ColorWork
	if activity.IsOnBreak() {
		timerColor = m.theme.ColorBreak
	}
	if interval.Overdue(now) {
		timerColor = m.theme.ColorOverdue
	}
	timerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(timerColor))

	sections = append(sections, "")
	sections = append(sections, timerStyle.Render(interval.FormatRemaining(now)))

	bar := progress.New(progress.WithGradient(gradStart, gradEnd), progress.WithoutPercentage())
	bar.Width = m.barWidth()
	sections = append(sections, bar.ViewAs(interval.Progress(now)))

	return sections
}

func (m Model) barWidth() int {
	w := m.width / 2
	if w < 20 {
		w = 20
	}
	if w > m.width-4 {
		w = m.width - 4
	}
	return w
}

func (m Model) helpLine(activity domain.Activity) string {
	if activity.IsWorking() {
		return "[q]uit  [c]omplete  [r]eroll  [e]xtend  [t]edit  [d]efer  [o]pen  [b]reakdown  [f]ocus log"
	}
	return "[q]uit  [r]eroll  [e]xtend"
}

// formatCoarse renders a duration at day/hour/minute granularity for due
// hints.
func formatCoarse(d time.Duration) string {
	if d < 0 {
		return "-" + formatCoarse(-d)
	}
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
}
