// Package testutils builds a complete HTTP app over throwaway stores.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	infra_localstore "github.com/amirasaad/finsync/infra/localstore"
	infra_notify "github.com/amirasaad/finsync/infra/notify"
	"github.com/amirasaad/finsync/infra/realtime"
	infra_remote "github.com/amirasaad/finsync/infra/remote"
	"github.com/amirasaad/finsync/pkg/app"
	"github.com/amirasaad/finsync/pkg/config"
	"github.com/amirasaad/finsync/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// Now is the fixed clock of the test app.
var Now = time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)

// Env is a running app backed by a sqlite remote store and an in-memory
// local store.
type Env struct {
	Fiber *fiber.App
	App   *app.App
	Feed  *realtime.Memory
	// Token is the bearer token of the last successful sign in.
	Token string
}

// Secret signs the tokens of the test app.
const Secret = "test-secret"

func NewEnv(t *testing.T) *Env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := infra_remote.Open(infra_remote.DriverSQLite, filepath.Join(t.TempDir(), "remote.db"), "test")
	require.NoError(t, err)
	require.NoError(t, infra_remote.Migrate(db))
	feed := realtime.NewMemory(logger)

	a := app.New(&app.Deps{
		Remote:     infra_remote.New(db, feed, logger),
		Local:      infra_localstore.NewMemory(),
		Dispatcher: infra_notify.NewLog(logger),
		Logger:     logger,
		Now:        func() time.Time { return Now },
	}, &config.App{
		Env:  "test",
		Auth: &config.Auth{Jwt: &config.Jwt{Secret: Secret, Expiry: time.Hour}},
	})
	t.Cleanup(func() { a.AuthService.Logout(context.Background()) })

	return &Env{Fiber: webapi.SetupApp(a), App: a, Feed: feed}
}

// Do sends a JSON request with the current bearer token and decodes the
// response body into out when given. Sign in responses replace the token.
func (e *Env) Do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if e.Token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+e.Token)
	}
	resp, err := e.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode < 300 && (path == "/auth/login" || path == "/auth/register") {
		var signed Envelope[struct {
			Token string `json:"token"`
		}]
		require.NoError(t, json.Unmarshal(raw, &signed), string(raw))
		e.Token = signed.Data.Token
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

// Envelope mirrors common.Response with a typed payload.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

