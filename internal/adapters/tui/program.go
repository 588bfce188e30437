package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskroll/internal/adapters/notification"
	"taskroll/internal/config"
	"taskroll/internal/services"
)

// Run drives the scheduler until the user quits or a fatal error occurs.
// The terminal surface is restored before any error is returned, so the
// cause chain prints on a sane screen.
func Run(ctx context.Context, engine *services.Engine, notifier *notification.Notifier, theme config.ThemeConfig) error {
	model := NewModel(ctx, engine, notifier, theme)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		// Still close any open focus record; the run error stays primary.
		_ = engine.Shutdown(ctx, time.Now())
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return finish(ctx, engine, final)
}

// finish closes any open focus record regardless of how the program ended.
// A fatal error from the model wins over a finalization failure.
func finish(ctx context.Context, engine *services.Engine, final tea.Model) error {
	shutdownErr := engine.Shutdown(ctx, time.Now())

	if m, ok := final.(Model); ok && m.FatalErr() != nil {
		return m.FatalErr()
	}

	if shutdownErr != nil {
		return fmt.Errorf("failed to finalize focus history: %w", shutdownErr)
	}
	return nil
}
