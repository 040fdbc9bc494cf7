package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/finsync/pkg/config"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/localstore"
	"github.com/amirasaad/finsync/pkg/remote"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigningKey is returned by GenerateToken when no JWT secret is set.
var ErrNoSigningKey = errors.New("auth: no token signing key configured")

// NewWithJWT creates the auth service issuing HS256 bearer tokens.
func NewWithJWT(
	client remote.Client,
	session Session,
	local localstore.Store,
	cfg *config.Jwt,
	now func() time.Time,
	logger *slog.Logger,
) *Service {
	s := New(client, session, local, now, logger)
	s.jwtCfg = cfg
	return s
}

// GenerateToken signs a token carrying the session identity.
func (s *Service) GenerateToken(sess domain.Session) (string, error) {
	log := s.logger.With("context", "GenerateToken")
	if s.jwtCfg == nil || s.jwtCfg.Secret == "" {
		return "", ErrNoSigningKey
	}
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["email"] = sess.Email
	claims["name"] = sess.Name
	claims["exp"] = time.Now().Add(s.jwtCfg.Expiry).Unix()
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		log.Error("GenerateToken failed", "email", sess.Email, "error", err)
		return "", err
	}
	log.Debug("GenerateToken successful", "email", sess.Email)
	return signed, nil
}

// EmailFromToken returns the email claim of a verified token.
func EmailFromToken(token *jwt.Token) (string, error) {
	if token == nil {
		return "", fmt.Errorf("missing token: %w", domain.ErrValidation)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims: %w", domain.ErrValidation)
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("token has no email: %w", domain.ErrValidation)
	}
	return domain.NormalizeEmail(email), nil
}
