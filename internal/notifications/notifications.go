// Package notifications delivers trade alerts to external channels.
package notifications

// Notifier delivers an alert with a severity level.
type Notifier interface {
	SendAlert(level, message string) error
}

// Noop discards all alerts. Used when no notifier is configured.
type Noop struct{}

func (Noop) SendAlert(string, string) error { return nil }
