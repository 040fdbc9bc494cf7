// Package notify holds the notification dispatchers: a structured-log sink
// and an SMTP sender.
package notify

import (
	"context"
	"log/slog"

	"github.com/amirasaad/finsync/pkg/notify"
)

// Log writes every notification to the logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("dispatcher", "log")}
}

func (l *Log) Dispatch(ctx context.Context, title, body, iconURL, dedupeTag string) error {
	to, _ := notify.RecipientFrom(ctx)
	l.logger.InfoContext(ctx, "🔔 notification",
		"to", to,
		"title", title,
		"body", body,
		"icon", iconURL,
		"tag", dedupeTag,
	)
	return nil
}

var _ notify.Dispatcher = (*Log)(nil)
