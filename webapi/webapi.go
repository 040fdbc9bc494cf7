// Package webapi exposes the sync session over HTTP:
// - auth: sign in, register, sign out, session status
// - ledger: entity handlers on the active session state
//
// With a JWT secret configured the ledger routes require the bearer token
// issued on sign in.
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/finsync/pkg/app"
	"github.com/amirasaad/finsync/pkg/middleware"
	authweb "github.com/amirasaad/finsync/webapi/auth"
	"github.com/amirasaad/finsync/webapi/common"
	ledgerweb "github.com/amirasaad/finsync/webapi/ledger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	_ "github.com/amirasaad/finsync/webapi/docs"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	maxRequests, window := 100, time.Minute
	if rl := app.Config.RateLimit; rl != nil && rl.MaxRequests > 0 {
		maxRequests, window = rl.MaxRequests, rl.Window
	}
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				first, _, _ := strings.Cut(forwardedFor, ",")
				return strings.TrimSpace(first)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	if app.Config.Env == "development" {
		fiberApp.Use(logger.New())
	}

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("FinSync API is running! 🚀")
	})

	var protected []fiber.Handler
	if auth := app.Config.Auth; auth != nil && auth.Jwt != nil {
		protected = append(protected, middleware.JwtProtected(auth.Jwt), middleware.SessionOwner(app.Sync.Email))
	}
	authweb.Routes(fiberApp, app.AuthService, app.Sync, protected...)
	ledgerweb.Routes(fiberApp, app.LedgerService, protected...)
	return fiberApp
}
