package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/finsync/infra/realtime"
	"github.com/amirasaad/finsync/pkg/remote"
)

type feed interface {
	remote.Feed
	Close() error
}

// RunSmokeTest publishes one change on the configured feed and waits for a
// subscriber on the same email to receive it.
func RunSmokeTest() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	driver := strings.TrimSpace(os.Getenv("FEED_DRIVER"))
	var (
		f   feed
		err error
	)
	switch driver {
	case "redis":
		url := strings.TrimSpace(os.Getenv("REDIS_URL"))
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		f, err = realtime.NewRedis(url, "finsync:smoke", logger)
	default:
		brokers := strings.TrimSpace(os.Getenv("BROKERS"))
		if brokers == "" {
			brokers = "localhost:9093,localhost:9092"
		}
		f, err = realtime.NewKafka(realtime.KafkaConfig{
			Brokers: brokers,
			Topic:   "finsync.smoke.user-changes",
			GroupID: strings.TrimSpace(os.Getenv("GROUP_ID")),
		}, logger)
	}
	if err != nil {
		logger.Error("feed unavailable", "driver", driver, "error", err)
		return err
	}
	defer func() { _ = f.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := "smoke-" + time.Now().Format("150405") + "@finsync.local"
	got := make(chan remote.Change, 1)
	unsubscribe, err := f.Subscribe(ctx, email, func(ch remote.Change) {
		select {
		case got <- ch:
		default:
		}
	})
	if err != nil {
		logger.Error("subscribe failed", "error", err)
		return err
	}
	defer unsubscribe()
	// the kafka reader joins at the tail of the topic
	time.Sleep(2 * time.Second)

	note := "smoke " + time.Now().Format(time.RFC3339Nano)
	if err := f.Publish(ctx, remote.Change{Email: email, NotepadContent: &note}); err != nil {
		logger.Error("publish failed", "error", err)
		return err
	}
	logger.Info("published", "email", email)

	select {
	case ch := <-got:
		if ch.NotepadContent == nil || *ch.NotepadContent != note {
			return errors.New("received an unexpected change")
		}
		logger.Info("feed smoke test passed", "email", ch.Email)
		return nil
	case <-ctx.Done():
		logger.Error("no change received", "error", ctx.Err())
		return ctx.Err()
	}
}

// main runs the smoke test and exits non-zero on failure.
func main() {
	if err := RunSmokeTest(); err != nil {
		os.Exit(1)
	}
}
