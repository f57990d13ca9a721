package notify

import "context"

// Notifier delivers a short operator message somewhere outside the
// terminal that ran the probe.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}
