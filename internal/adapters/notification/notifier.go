// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"taskroll/internal/config"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg *config.NotificationConfig
}

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	if n.cfg.Sound {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}

// NotifyOverdue fires once when the current activity's interval runs out.
// The activity keeps displaying past its nominal end; this is the only nudge.
func (n *Notifier) NotifyOverdue(label string, planned time.Duration) error {
	title := "⏰ Time's up"
	message := fmt.Sprintf("%s — %d minutes are over. Complete, reroll, or extend.", label, int(planned.Minutes()))
	return n.Notify(title, message)
}

// NotifyBreakOver fires when a break interval runs out.
func (n *Notifier) NotifyBreakOver() error {
	return n.Notify("☕ Break over", "Ready to roll the next task?")
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
