// Package remote defines the network-backed store that mirrors a user's
// record, and the partial-record change type it pushes back in realtime.
package remote

import (
	"context"
	"encoding/json"

	"github.com/amirasaad/finsync/pkg/domain"
)

// Collection names a child collection; saves replace it wholesale.
type Collection string

const (
	CollectionTransactions  Collection = "transactions"
	CollectionAccounts      Collection = "accounts"
	CollectionInvestments   Collection = "investments"
	CollectionNotifications Collection = "notifications"
	CollectionLongTerm      Collection = "long_term"
)

// Field names a top-level field of the user record; saves merge it.
type Field string

const (
	FieldProfile          Field = "profile"
	FieldTheme            Field = "theme"
	FieldMonths           Field = "months"
	FieldCDIRate          Field = "cdi_rate"
	FieldNotepad          Field = "notepad_content"
	FieldPushSubscription Field = "push_subscription"
)

// Client is the remote store. Login and Register report domain.ErrNotFound and
// domain.ErrAlreadyExists. SaveCollection and SaveField never return errors;
// false means the write did not land.
type Client interface {
	Login(ctx context.Context, email string) (*domain.UserRecord, error)
	Register(ctx context.Context, email, name string, initial Change) (*domain.UserRecord, error)
	// LoadUserData returns nil, nil when the record does not exist.
	LoadUserData(ctx context.Context, email string) (*domain.UserRecord, error)
	SaveCollection(ctx context.Context, email string, name Collection, items any) bool
	SaveField(ctx context.Context, email string, name Field, value any) bool
	// SubscribeToChanges delivers every change to the record, including the
	// ones caused by this client's own writes.
	SubscribeToChanges(ctx context.Context, email string, onChange func(Change)) (unsubscribe func(), err error)
}

// Change is a partial user record. A nil field was not part of the change.
type Change struct {
	Email            string                        `json:"email"`
	Profile          *domain.UserProfile           `json:"profile,omitempty"`
	Theme            *domain.AppTheme              `json:"theme,omitempty"`
	Months           *[]domain.MonthSummary        `json:"months,omitempty"`
	CDIRate          *float64                      `json:"cdiRate,omitempty"`
	NotepadContent   *string                       `json:"notepadContent,omitempty"`
	PushSubscription json.RawMessage               `json:"pushSubscription,omitempty"`
	Transactions     *[]domain.Transaction         `json:"transactions,omitempty"`
	Accounts         *[]domain.Account             `json:"accounts,omitempty"`
	Investments      *[]domain.Investment          `json:"investments,omitempty"`
	Notifications    *[]domain.AppNotification     `json:"notifications,omitempty"`
	LongTerm         *[]domain.LongTermTransaction `json:"longTerm,omitempty"`
}

// FullChange turns a complete record into a change carrying every field.
func FullChange(rec *domain.UserRecord) Change {
	r := *rec
	return Change{
		Email:            r.Email,
		Profile:          &r.Profile,
		Theme:            &r.Theme,
		Months:           &r.Months,
		CDIRate:          &r.CDIRate,
		NotepadContent:   &r.NotepadContent,
		PushSubscription: r.PushSubscription,
		Transactions:     &r.Transactions,
		Accounts:         &r.Accounts,
		Investments:      &r.Investments,
		Notifications:    &r.Notifications,
		LongTerm:         &r.LongTerm,
	}
}

// Empty reports whether the change carries no fields.
func (c Change) Empty() bool {
	return c.Profile == nil && c.Theme == nil && c.Months == nil &&
		c.CDIRate == nil && c.NotepadContent == nil && c.PushSubscription == nil &&
		c.Transactions == nil && c.Accounts == nil && c.Investments == nil &&
		c.Notifications == nil && c.LongTerm == nil
}

// Feed fans record changes out to subscribers of the same email.
type Feed interface {
	Publish(ctx context.Context, ch Change) error
	Subscribe(ctx context.Context, email string, fn func(Change)) (unsubscribe func(), err error)
}
