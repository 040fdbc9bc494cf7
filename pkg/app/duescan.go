package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/notify"
	"github.com/amirasaad/finsync/pkg/syncer"
	"github.com/robfig/cron/v3"
)

const DefaultScanSchedule = "@every 5s"

// Session is the part of the orchestrator the scan reads.
type Session interface {
	Status() syncer.Status
	Email() string
}

// Notifications receives the notifications raised by a scan.
type Notifications interface {
	Snapshot() domain.State
	AppendNotifications(ns []domain.AppNotification) error
}

// DueScan periodically raises notifications for bills due today while a
// session is ready.
type DueScan struct {
	session  Session
	target   Notifications
	scanner  *derived.Scanner
	schedule string
	delay    time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

func NewDueScan(
	session Session,
	target Notifications,
	scanner *derived.Scanner,
	schedule string,
	delay time.Duration,
	logger *slog.Logger,
) *DueScan {
	if schedule == "" {
		schedule = DefaultScanSchedule
	}
	return &DueScan{
		session:  session,
		target:   target,
		scanner:  scanner,
		schedule: schedule,
		delay:    delay,
		logger:   logger.With("component", "due-scan"),
	}
}

// Start schedules the scan after the startup delay. It returns an error for
// an invalid schedule or when already started.
func (d *DueScan) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		return errors.New("due scan already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(d.logger.Handler(), slog.LevelDebug))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(d.schedule, func() { d.Tick(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("due scan schedule %q: %w", d.schedule, err)
	}
	d.cron, d.cancel = c, cancel

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.delay):
		}
		d.logger.Debug("due scan started", "schedule", d.schedule)
		c.Start()
	}()
	return nil
}

// Stop cancels the schedule and waits for a running scan.
func (d *DueScan) Stop() {
	d.mu.Lock()
	c, cancel := d.cron, d.cancel
	d.cron, d.cancel = nil, nil
	d.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
}

// Tick runs one scan. It is a no-op unless the session is ready.
func (d *DueScan) Tick(ctx context.Context) int {
	if d.session.Status() != syncer.StatusReady {
		return 0
	}
	email := d.session.Email()
	st := d.target.Snapshot()
	created := d.scanner.Scan(notify.WithRecipient(ctx, email), st.Transactions, st.Notifications)
	if len(created) == 0 {
		return 0
	}
	if err := d.target.AppendNotifications(created); err != nil {
		d.logger.Warn("due notifications not recorded", "email", email, "error", err)
		return 0
	}
	return len(created)
}
