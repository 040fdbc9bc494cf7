// Package middleware holds the fiber middleware guarding the session routes.
package middleware

import (
	"errors"
	"strings"

	"github.com/amirasaad/finsync/pkg/config"
	authsvc "github.com/amirasaad/finsync/pkg/service/auth"
	"github.com/amirasaad/finsync/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtProtected verifies the bearer token and stores it under "user".
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) ||
		strings.EqualFold(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		return common.ProblemDetailsJSON(c, "Missing or malformed JWT", err, fiber.StatusBadRequest)
	}
	return common.ProblemDetailsJSON(c, "Invalid or expired JWT", err, fiber.StatusUnauthorized)
}

// SessionOwner rejects tokens issued for another user than the one owning
// the running sync session.
func SessionOwner(current func() string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals("user").(*jwt.Token)
		email, err := authsvc.EmailFromToken(token)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid or expired JWT", err, fiber.StatusUnauthorized)
		}
		if owner := current(); owner != "" && owner != email {
			return common.ProblemDetailsJSON(c, "Forbidden", errors.New("token belongs to another session"), fiber.StatusForbidden)
		}
		return c.Next()
	}
}
