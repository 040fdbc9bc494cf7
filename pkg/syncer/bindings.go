package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/localstore"
	"github.com/amirasaad/finsync/pkg/remote"
)

// Key identifies one independently synced collection or field.
type Key string

const (
	KeyTransactions  Key = "transactions"
	KeyAccounts      Key = "accounts"
	KeyInvestments   Key = "investments"
	KeyLongTerm      Key = "long_term"
	KeyNotifications Key = "notifications"
	KeyProfile       Key = "profile"
	KeyTheme         Key = "theme"
	KeyMonths        Key = "months"
	KeyNotepad       Key = "notepad"
	KeyCDIRate       Key = "cdi_rate"
)

// binding ties one slice of State to its local key and remote destination.
type binding struct {
	key      Key
	localKey string
	delay    time.Duration
	value    func(*domain.State) any
	push     func(ctx context.Context, c remote.Client, email string, data []byte) bool
	load     func(s localstore.Store, st *domain.State, logger *slog.Logger)
	apply    func(st *domain.State, ch remote.Change) bool
}

func collectionBinding[T any](
	key Key,
	localKey string,
	name remote.Collection,
	delay time.Duration,
	field func(*domain.State) *[]T,
	from func(remote.Change) *[]T,
) binding {
	return binding{
		key:      key,
		localKey: localKey,
		delay:    delay,
		value:    func(st *domain.State) any { return *field(st) },
		push: func(ctx context.Context, c remote.Client, email string, data []byte) bool {
			var items []T
			if err := json.Unmarshal(data, &items); err != nil {
				return false
			}
			return c.SaveCollection(ctx, email, name, nonNil(items))
		},
		load: func(s localstore.Store, st *domain.State, logger *slog.Logger) {
			*field(st) = nonNil(localstore.Load(s, localKey, []T{}, logger))
		},
		apply: func(st *domain.State, ch remote.Change) bool {
			v := from(ch)
			if v == nil {
				return false
			}
			*field(st) = nonNil(*v)
			return true
		},
	}
}

func fieldBinding[T any](
	key Key,
	localKey string,
	name remote.Field,
	delay time.Duration,
	fallback T,
	field func(*domain.State) *T,
	from func(remote.Change) *T,
) binding {
	return binding{
		key:      key,
		localKey: localKey,
		delay:    delay,
		value:    func(st *domain.State) any { return *field(st) },
		push: func(ctx context.Context, c remote.Client, email string, data []byte) bool {
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				return false
			}
			return c.SaveField(ctx, email, name, v)
		},
		load: func(s localstore.Store, st *domain.State, logger *slog.Logger) {
			*field(st) = localstore.Load(s, localKey, fallback, logger)
		},
		apply: func(st *domain.State, ch remote.Change) bool {
			v := from(ch)
			if v == nil {
				return false
			}
			*field(st) = *v
			return true
		},
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func newBindings(cfg Config) []binding {
	return []binding{
		collectionBinding(KeyTransactions, localstore.KeyTransactions, remote.CollectionTransactions, cfg.CollectionDelay,
			func(st *domain.State) *[]domain.Transaction { return &st.Transactions },
			func(ch remote.Change) *[]domain.Transaction { return ch.Transactions }),
		collectionBinding(KeyAccounts, localstore.KeyAccounts, remote.CollectionAccounts, cfg.CollectionDelay,
			func(st *domain.State) *[]domain.Account { return &st.Accounts },
			func(ch remote.Change) *[]domain.Account { return ch.Accounts }),
		collectionBinding(KeyInvestments, localstore.KeyInvestments, remote.CollectionInvestments, cfg.CollectionDelay,
			func(st *domain.State) *[]domain.Investment { return &st.Investments },
			func(ch remote.Change) *[]domain.Investment { return ch.Investments }),
		collectionBinding(KeyLongTerm, localstore.KeyLongTerm, remote.CollectionLongTerm, cfg.CollectionDelay,
			func(st *domain.State) *[]domain.LongTermTransaction { return &st.LongTerm },
			func(ch remote.Change) *[]domain.LongTermTransaction { return ch.LongTerm }),
		collectionBinding(KeyNotifications, localstore.KeyNotifications, remote.CollectionNotifications, cfg.CollectionDelay,
			func(st *domain.State) *[]domain.AppNotification { return &st.Notifications },
			func(ch remote.Change) *[]domain.AppNotification { return ch.Notifications }),
		fieldBinding(KeyProfile, localstore.KeyUserProfile, remote.FieldProfile, cfg.FieldDelay, domain.UserProfile{},
			func(st *domain.State) *domain.UserProfile { return &st.Profile },
			func(ch remote.Change) *domain.UserProfile { return ch.Profile }),
		fieldBinding(KeyTheme, localstore.KeyAppTheme, remote.FieldTheme, cfg.FieldDelay, domain.AppTheme{},
			func(st *domain.State) *domain.AppTheme { return &st.Theme },
			func(ch remote.Change) *domain.AppTheme { return ch.Theme }),
		fieldBinding(KeyMonths, localstore.KeyMonths, remote.FieldMonths, cfg.FieldDelay, []domain.MonthSummary{},
			func(st *domain.State) *[]domain.MonthSummary { return &st.Months },
			func(ch remote.Change) *[]domain.MonthSummary { return ch.Months }),
		fieldBinding(KeyNotepad, localstore.KeyNotepad, remote.FieldNotepad, cfg.NotepadDelay, "",
			func(st *domain.State) *string { return &st.NotepadContent },
			func(ch remote.Change) *string { return ch.NotepadContent }),
		fieldBinding(KeyCDIRate, localstore.KeyCDIRate, remote.FieldCDIRate, cfg.FieldDelay, domain.DefaultCDIRate,
			func(st *domain.State) *float64 { return &st.CDIRate },
			func(ch remote.Change) *float64 { return ch.CDIRate }),
	}
}
