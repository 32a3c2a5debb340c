package notifier

import "context"

// Notifier delivers text messages to an operator channel.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Noop discards every message. Used when Telegram is not configured.
type Noop struct{}

func (Noop) SendWithRetry(context.Context, string, int) error { return nil }
