// Package auth signs users in and out. Signing in persists the session
// identity and starts the sync session; only errors from the remote store's
// login and register reach the caller.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/finsync/pkg/config"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/localstore"
	"github.com/amirasaad/finsync/pkg/remote"
	"github.com/go-playground/validator/v10"
)

// Session is the sync session driven by sign-in and sign-out.
type Session interface {
	Start(ctx context.Context, email string) error
	Stop(ctx context.Context)
}

type Service struct {
	remote   remote.Client
	session  Session
	local    localstore.Store
	validate *validator.Validate
	jwtCfg   *config.Jwt
	now      func() time.Time
	logger   *slog.Logger
}

// New creates the auth service. A nil clock means time.Now.
func New(
	client remote.Client,
	session Session,
	local localstore.Store,
	now func() time.Time,
	logger *slog.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		remote:   client,
		session:  session,
		local:    local,
		validate: validator.New(),
		now:      now,
		logger:   logger,
	}
}

func (s *Service) ValidEmail(email string) bool {
	return s.validate.Var(email, "required,email") == nil
}

func (s *Service) checkEmail(email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if !s.ValidEmail(email) {
		return "", fmt.Errorf("invalid email %q: %w", email, domain.ErrValidation)
	}
	return email, nil
}

// Login signs in an existing user. domain.ErrNotFound when there is no
// record for email.
func (s *Service) Login(ctx context.Context, email string) (domain.Session, error) {
	log := s.logger.With("context", "Login")
	email, err := s.checkEmail(email)
	if err != nil {
		return domain.Session{}, err
	}
	log.Debug("Login called", "email", email)
	rec, err := s.remote.Login(ctx, email)
	if err != nil {
		log.Error("Login failed", "email", email, "error", err)
		return domain.Session{}, err
	}
	sess := domain.Session{Email: rec.Email, Name: rec.Profile.Name}
	if err := s.begin(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	log.Info("Login successful", "email", email)
	return sess, nil
}

// Register creates a record seeded with the current month and the default
// CDI rate, then signs in. domain.ErrAlreadyExists when the email is taken.
func (s *Service) Register(ctx context.Context, email, name string) (domain.Session, error) {
	log := s.logger.With("context", "Register")
	email, err := s.checkEmail(email)
	if err != nil {
		return domain.Session{}, err
	}
	if name == "" {
		return domain.Session{}, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}

	p := domain.PartitionOf(s.now())
	starter := []domain.MonthSummary{{ID: domain.NewID(), Month: p.Month, Year: p.Year}}
	cdi := domain.DefaultCDIRate
	rec, err := s.remote.Register(ctx, email, name, remote.Change{Months: &starter, CDIRate: &cdi})
	if err != nil {
		log.Error("Register failed", "email", email, "error", err)
		return domain.Session{}, err
	}
	sess := domain.Session{Email: rec.Email, Name: rec.Profile.Name}
	if err := s.begin(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	log.Info("Register successful", "email", email)
	return sess, nil
}

// Resume restarts the session persisted by the last sign-in, if any.
func (s *Service) Resume(ctx context.Context) (domain.Session, bool, error) {
	sess, ok := s.Current()
	if !ok {
		return domain.Session{}, false, nil
	}
	if err := s.session.Start(ctx, sess.Email); err != nil {
		return domain.Session{}, false, err
	}
	s.logger.Info("session resumed", "email", sess.Email)
	return sess, true, nil
}

// Current returns the persisted session identity.
func (s *Service) Current() (domain.Session, bool) {
	sess := localstore.Load(s.local, localstore.KeySession, domain.Session{}, s.logger)
	return sess, sess.Email != ""
}

// Logout flushes and ends the sync session and forgets the identity.
func (s *Service) Logout(ctx context.Context) {
	s.session.Stop(ctx)
	if err := s.local.Delete(localstore.KeySession); err != nil && !errors.Is(err, localstore.ErrMissing) {
		s.logger.Warn("failed to clear session", "error", err)
	}
	s.logger.Info("logged out")
}

func (s *Service) begin(ctx context.Context, sess domain.Session) error {
	if err := localstore.Save(s.local, localstore.KeySession, sess); err != nil {
		s.logger.Warn("session identity not persisted", "email", sess.Email, "error", err)
	}
	return s.session.Start(ctx, sess.Email)
}
