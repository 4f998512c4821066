// Package notify dispatches ChangeRecords to the configured notification
// channels. The detector knows nothing about notifiers; the caller feeds
// detected changes into a Manager.
package notify

import (
	"context"

	"github.com/raysh454/kanshi/internal/interfaces"
	"github.com/raysh454/kanshi/internal/monitor"
)

// Notifier delivers one change notification. Implementations must be safe
// for use from concurrent checks of different targets.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string

	Notify(ctx context.Context, change *monitor.ChangeRecord) error
}

// Manager fans a change out to every registered notifier. One notifier
// failing never stops the others.
type Manager struct {
	notifiers []Notifier
	logger    interfaces.Logger
}

func NewManager(logger interfaces.Logger) *Manager {
	return &Manager{
		logger: logger.With(interfaces.Field{Key: "component", Value: "notify"}),
	}
}

// Add registers a notifier.
func (m *Manager) Add(n Notifier) {
	m.notifiers = append(m.notifiers, n)
	m.logger.Info("notifier registered", interfaces.Field{Key: "notifier", Value: n.Name()})
}

// NotifyAll delivers change to every registered notifier, logging failures.
func (m *Manager) NotifyAll(ctx context.Context, change *monitor.ChangeRecord) {
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, change); err != nil {
			m.logger.Error("notifier failed",
				interfaces.Field{Key: "notifier", Value: n.Name()},
				interfaces.Field{Key: "target", Value: change.TargetName},
				interfaces.Field{Key: "error", Value: err.Error()})
		}
	}
}
