package notify

import (
	"context"

	"github.com/PabloGalante/serene/internal/observability"
)

// LogNotifier delivers notifications as structured log lines. Permission
// is always granted.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

func (n *LogNotifier) Send(ctx context.Context, title, body string) error {
	observability.LoggerFromContext(ctx).Info("notification",
		"title", title,
		"body", body,
	)
	return nil
}
