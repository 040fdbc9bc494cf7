package initializer

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	infra_localstore "github.com/amirasaad/finsync/infra/localstore"
	infra_notify "github.com/amirasaad/finsync/infra/notify"
	"github.com/amirasaad/finsync/infra/realtime"
	infra_remote "github.com/amirasaad/finsync/infra/remote"
	"github.com/amirasaad/finsync/pkg/app"
	"github.com/amirasaad/finsync/pkg/config"
	"github.com/amirasaad/finsync/pkg/notify"
	"github.com/amirasaad/finsync/pkg/remote"
)

// Closer releases the connections opened by InitializeDependencies.
type Closer func() error

// InitializeDependencies builds the logger, the remote store with its change
// feed, the local store and the notification dispatcher.
func InitializeDependencies(cfg *config.App) (deps *app.Deps, closer Closer, err error) {
	logger := setupLogger(cfg.Log)
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	feed, closeFeed, err := initFeed(cfg.Feed, logger)
	if err != nil {
		return nil, nil, err
	}
	if closeFeed != nil {
		closers = append(closers, closeFeed)
	}

	db, err := infra_remote.Open(cfg.Remote.Driver, cfg.Remote.URL, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize remote store", "error", err)
		return nil, nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, sqlDB.Close)
	}
	if err := infra_remote.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate remote store: %w", err)
	}

	local, err := infra_localstore.OpenSQLite(cfg.Local.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}

	deps = &app.Deps{
		Remote:     infra_remote.New(db, feed, logger),
		Local:      local,
		Dispatcher: initDispatcher(cfg.Notify, logger),
		Logger:     logger,
	}
	return deps, closeAll, nil
}

// initFeed picks the realtime change feed. A Redis feed that cannot be
// reached falls back to the in-process feed.
func initFeed(cfg *config.Feed, logger *slog.Logger) (remote.Feed, Closer, error) {
	if cfg == nil {
		return realtime.NewMemory(logger), nil, nil
	}
	switch cfg.Driver {
	case "", "memory":
		return realtime.NewMemory(logger), nil, nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, nil, errors.New("FEED_REDIS_URL is required for the redis feed")
		}
		feed, err := realtime.NewRedis(cfg.Redis.URL, cfg.Redis.Prefix, logger)
		if err != nil {
			logger.Warn("Redis feed unavailable, using in-process feed", "error", err)
			return realtime.NewMemory(logger), nil, nil
		}
		return feed, feed.Close, nil
	case "kafka":
		if cfg.Kafka == nil {
			return nil, nil, errors.New("FEED_KAFKA_BROKERS is required for the kafka feed")
		}
		feed, err := realtime.NewKafka(realtime.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			GroupID:      cfg.Kafka.GroupID,
			SASLUsername: cfg.Kafka.SASLUsername,
			SASLPassword: cfg.Kafka.SASLPassword,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create kafka feed: %w", err)
		}
		return feed, feed.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown feed driver %q", cfg.Driver)
	}
}

func initDispatcher(cfg *config.Notify, logger *slog.Logger) notify.Dispatcher {
	if cfg == nil || cfg.Driver != "smtp" || cfg.SMTP == nil {
		return infra_notify.NewLog(logger)
	}
	return infra_notify.NewEmail(infra_notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     strconv.Itoa(cfg.SMTP.Port),
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)
}
