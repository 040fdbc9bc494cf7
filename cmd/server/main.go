package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/finsync/infra/initializer"
	"github.com/amirasaad/finsync/pkg/app"
	"github.com/amirasaad/finsync/pkg/config"
	"github.com/amirasaad/finsync/webapi"
	log "github.com/charmbracelet/log"
)

// @title FinSync API
// @version 1.0.0
// @description Personal finance sync API
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, closeDeps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := closeDeps(); err != nil {
			slog.Warn("failed to close dependencies", "error", err)
		}
	}()
	logger := deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(deps, cfg)
	if sess, ok, err := a.AuthService.Resume(ctx); err != nil {
		logger.Warn("previous session not resumed", "error", err)
	} else if ok {
		logger.Info("previous session resumed", "email", sess.Email)
	}
	if err := a.DueScan.Start(ctx); err != nil {
		return fmt.Errorf("failed to schedule due scan: %w", err)
	}

	fiberApp := webapi.SetupApp(a)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	errc := make(chan error, 1)
	go func() { errc <- fiberApp.Listen(addr) }()

	select {
	case err = <-errc:
	case <-ctx.Done():
		logger.Info("shutting down")
		err = fiberApp.ShutdownWithTimeout(10 * time.Second)
	}

	a.DueScan.Stop()
	flushCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.Sync.Stop(flushCtx)
	return err
}
