package derived

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/notify"
)

const (
	dueTitle        = "Conta vence hoje"
	dispatchTimeout = 10 * time.Second
)

// ScanConfig is the session-scoped configuration of the due-today scan.
type ScanConfig struct {
	// NotificationsAllowed reflects the host's notification permission. When
	// false notifications are still recorded in state but never dispatched.
	NotificationsAllowed bool
	IconURL              string
}

// Scanner raises one notification per unpaid transaction due today.
type Scanner struct {
	cfg        ScanConfig
	dispatcher notify.Dispatcher
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
}

// NewScanner creates a due-today scanner. A nil dispatcher drops deliveries.
func NewScanner(cfg ScanConfig, dispatcher notify.Dispatcher, now func() time.Time, logger *slog.Logger) *Scanner {
	if dispatcher == nil {
		dispatcher = notify.Nop
	}
	if now == nil {
		now = time.Now
	}
	return &Scanner{
		cfg:        cfg,
		dispatcher: dispatcher,
		now:        now,
		newID:      domain.NewID,
		logger:     logger.With("component", "due-scan"),
	}
}

// Scan returns the notifications to append for transactions due today that
// are not yet referenced by a notification dated today. Delivery of each new
// notification is started in the background and its outcome only logged.
func (s *Scanner) Scan(ctx context.Context, txs []domain.Transaction, existing []domain.AppNotification) []domain.AppNotification {
	today := s.now()
	date := today.Format(time.DateOnly)

	seen := make([]domain.AppNotification, 0, len(existing))
	for _, n := range existing {
		if n.Date == date {
			seen = append(seen, n)
		}
	}

	var created []domain.AppNotification
	for _, tx := range txs {
		if tx.Paid || !DueOn(tx.Date, today) || referenced(seen, tx.Name) {
			continue
		}
		n := domain.AppNotification{
			ID:      s.newID(),
			Title:   dueTitle,
			Message: fmt.Sprintf("%s vence hoje: R$ %.2f", tx.Name, tx.Amount),
			Date:    date,
			Kind:    domain.NotificationKindDueBill,
		}
		created = append(created, n)
		seen = append(seen, n)
		if s.cfg.NotificationsAllowed {
			s.dispatch(ctx, n, "due-"+tx.ID+"-"+date)
		}
	}
	if len(created) > 0 {
		s.logger.Info("due bills found", "count", len(created), "date", date)
	}
	return created
}

func (s *Scanner) dispatch(ctx context.Context, n domain.AppNotification, tag string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic recovered in notification dispatch", "tag", tag, "panic", r)
			}
		}()
		if err := s.dispatcher.Dispatch(ctx, n.Title, n.Message, s.cfg.IconURL, tag); err != nil {
			s.logger.Warn("notification dispatch failed", "tag", tag, "error", err)
		}
	}()
}

func referenced(notifications []domain.AppNotification, name string) bool {
	for _, n := range notifications {
		if strings.Contains(n.Message, name) || strings.Contains(n.Title, name) {
			return true
		}
	}
	return false
}
