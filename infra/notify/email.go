package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/smtp"

	"github.com/amirasaad/finsync/pkg/notify"
	"github.com/jordan-wright/email"
)

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ErrNoRecipient is returned when the context carries no recipient.
var ErrNoRecipient = errors.New("notify: no recipient in context")

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Email sends notifications as plain-text mail to the recipient carried by
// the context.
type Email struct {
	cfg    SMTPConfig
	send   sendFunc
	logger *slog.Logger
}

func NewEmail(cfg SMTPConfig, logger *slog.Logger) *Email {
	return &Email{
		cfg:    cfg,
		send:   func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
		logger: logger.With("dispatcher", "email"),
	}
}

func (s *Email) Dispatch(ctx context.Context, title, body, iconURL, dedupeTag string) error {
	to, ok := notify.RecipientFrom(ctx)
	if !ok {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{to}
	e.Subject = title
	if dedupeTag != "" {
		e.Headers.Set("X-Entity-Ref-ID", dedupeTag)
	}
	if iconURL != "" {
		e.HTML = []byte(fmt.Sprintf(`<p><img src="%s" alt="" width="48" height="48"></p><p>%s</p>`, html.EscapeString(iconURL), html.EscapeString(body)))
	}
	e.Text = []byte(body + "\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Error("failed to send notification", "to", to, "error", err)
		return fmt.Errorf("failed to send notification: %w", err)
	}
	s.logger.Info("notification sent", "to", to, "subject", e.Subject)
	return nil
}

var _ notify.Dispatcher = (*Email)(nil)
