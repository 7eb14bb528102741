// Package notify delivers invite emails.
package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// LogNotifier logs messages instead of sending them. It is the default when
// no SMTP server is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, to, subject, body string) error {
	slogx.FromContext(ctx).Info("email (simulated)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
