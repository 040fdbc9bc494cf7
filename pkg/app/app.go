package app

import (
	"log/slog"
	"time"

	"github.com/amirasaad/finsync/pkg/config"
	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/dirty"
	"github.com/amirasaad/finsync/pkg/localstore"
	"github.com/amirasaad/finsync/pkg/notify"
	"github.com/amirasaad/finsync/pkg/remote"
	"github.com/amirasaad/finsync/pkg/service/auth"
	"github.com/amirasaad/finsync/pkg/service/ledger"
	"github.com/amirasaad/finsync/pkg/syncer"
)

// Deps contains the infrastructure the application is built from.
type Deps struct {
	Remote     remote.Client
	Local      localstore.Store
	Dispatcher notify.Dispatcher
	Logger     *slog.Logger
	// Now is the wall clock; nil means time.Now.
	Now func() time.Time
	// SyncOptions are passed to the orchestrator, e.g. a test scheduler.
	SyncOptions []syncer.Option
}

type App struct {
	Deps          *Deps
	Config        *config.App
	Sync          *syncer.Orchestrator
	AuthService   *auth.Service
	LedgerService *ledger.Service
	DueScan       *DueScan
}

func New(deps *Deps, cfg *config.App) *App {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	opts := append([]syncer.Option{syncer.WithClock(now)}, deps.SyncOptions...)
	orchestrator := syncer.New(
		deps.Remote,
		deps.Local,
		dirty.NewTracker(deps.Local, deps.Logger),
		cfg.Sync.SyncConfig(),
		deps.Logger,
		opts...,
	)

	app := &App{
		Deps:          deps,
		Config:        cfg,
		Sync:          orchestrator,
		AuthService:   newAuthService(deps, orchestrator, cfg, now),
		LedgerService: ledger.New(orchestrator, now, deps.Logger),
	}

	var schedule string
	var delay time.Duration
	if cfg.Scan != nil {
		schedule, delay = cfg.Scan.Schedule, cfg.Scan.StartupDelay
	}
	app.DueScan = NewDueScan(
		orchestrator,
		app.LedgerService,
		derived.NewScanner(cfg.Scan.ScanConfig(), deps.Dispatcher, now, deps.Logger),
		schedule,
		delay,
		deps.Logger,
	)
	return app
}

func newAuthService(deps *Deps, session auth.Session, cfg *config.App, now func() time.Time) *auth.Service {
	if cfg.Auth != nil && cfg.Auth.Jwt != nil {
		return auth.NewWithJWT(deps.Remote, session, deps.Local, cfg.Auth.Jwt, now, deps.Logger)
	}
	return auth.New(deps.Remote, session, deps.Local, now, deps.Logger)
}
