package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/finsync/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwt = &config.Jwt{Secret: "secret", Expiry: time.Hour}

func signed(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   exp.Unix(),
	}).SignedString([]byte(testJwt.Secret))
	require.NoError(t, err)
	return s
}

func protectedApp(owner string) *fiber.App {
	app := fiber.New()
	app.Use(JwtProtected(testJwt), SessionOwner(func() string { return owner }))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func status(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	app := protectedApp("ana@example.com")
	valid := signed(t, "ana@example.com", time.Now().Add(time.Hour))

	assert.Equal(t, fiber.StatusOK, status(t, app, valid))
	assert.Equal(t, fiber.StatusBadRequest, status(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, signed(t, "ana@example.com", time.Now().Add(-time.Hour))))
	assert.Equal(t, fiber.StatusForbidden, status(t, app, signed(t, "bob@example.com", time.Now().Add(time.Hour))))
}

func TestSessionOwner_NoSession(t *testing.T) {
	app := protectedApp("")
	assert.Equal(t, fiber.StatusOK, status(t, app, signed(t, "bob@example.com", time.Now().Add(time.Hour))))
}

func TestJwtError(t *testing.T) {
	app := fiber.New()
	app.Get("/malformed", func(c *fiber.Ctx) error { return jwtError(c, errors.New("Missing or malformed JWT")) })
	app.Get("/invalid", func(c *fiber.Ctx) error { return jwtError(c, errors.New("any other error")) })

	for path, want := range map[string]int{"/malformed": fiber.StatusBadRequest, "/invalid": fiber.StatusUnauthorized} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close() //nolint:errcheck
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
