package initializer

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	infra_notify "github.com/amirasaad/finsync/infra/notify"
	"github.com/amirasaad/finsync/infra/realtime"
	"github.com/amirasaad/finsync/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitFeed_DefaultsToMemory(t *testing.T) {
	feed, closer, err := initFeed(&config.Feed{Driver: ""}, discard())
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.IsType(t, &realtime.Memory{}, feed)
}

func TestInitFeed_RedisRequiresURL(t *testing.T) {
	_, _, err := initFeed(&config.Feed{Driver: "redis", Redis: &config.Redis{}}, discard())
	require.Error(t, err)
}

func TestInitFeed_RedisConnectionErrorFallsBackToMemory(t *testing.T) {
	feed, _, err := initFeed(&config.Feed{Driver: "redis", Redis: &config.Redis{URL: "redis://127.0.0.1:1", Prefix: "finsync:user"}}, discard())
	require.NoError(t, err)
	assert.IsType(t, &realtime.Memory{}, feed)
}

func TestInitFeed_KafkaRequiresBrokers(t *testing.T) {
	_, _, err := initFeed(&config.Feed{Driver: "kafka", Kafka: &config.Kafka{Brokers: " , ", Topic: "t"}}, discard())
	require.Error(t, err)
}

func TestInitFeed_Kafka(t *testing.T) {
	feed, closer, err := initFeed(&config.Feed{Driver: "kafka", Kafka: &config.Kafka{Brokers: "localhost:9092", Topic: "t"}}, discard())
	require.NoError(t, err)
	assert.IsType(t, &realtime.Kafka{}, feed)
	assert.NoError(t, closer())
}

func TestInitFeed_UnknownDriver(t *testing.T) {
	_, _, err := initFeed(&config.Feed{Driver: "nats"}, discard())
	assert.Error(t, err)
}

func TestInitDispatcher(t *testing.T) {
	assert.IsType(t, &infra_notify.Log{}, initDispatcher(nil, discard()))
	assert.IsType(t, &infra_notify.Email{}, initDispatcher(&config.Notify{
		Driver: "smtp",
		SMTP:   &config.SMTP{Host: "mail", Port: 25, From: "a@b.c"},
	}, discard()))
}

func TestInitializeDependencies_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.App{
		Env:    "test",
		Log:    &config.Log{Format: "text"},
		Remote: &config.Remote{Driver: "sqlite", URL: filepath.Join(dir, "remote.db")},
		Local:  &config.Local{Path: filepath.Join(dir, "local.db")},
		Feed:   &config.Feed{Driver: "memory"},
	}
	deps, closer, err := InitializeDependencies(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, closer()) })

	assert.NotNil(t, deps.Remote)
	assert.NotNil(t, deps.Local)
	assert.IsType(t, &infra_notify.Log{}, deps.Dispatcher)
}

func TestInitializeDependencies_MissingRemoteURL(t *testing.T) {
	cfg := &config.App{
		Log:    &config.Log{Format: "text"},
		Remote: &config.Remote{Driver: "postgres"},
		Local:  &config.Local{Path: filepath.Join(t.TempDir(), "local.db")},
	}
	_, _, err := InitializeDependencies(cfg)
	assert.ErrorContains(t, err, "REMOTE_URL")
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&config.Log{Format: "json", Prefix: "[finsync]"}, &buf)
	logger.Info("hello", "component", "sync")
	assert.Contains(t, buf.String(), `"component":"sync"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestNewLogger_AutoFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&config.Log{Format: "auto"}, &buf).Info("piped")
	assert.Contains(t, buf.String(), `"msg":"piped"`)
	assert.False(t, isTerminal(&buf))
}
