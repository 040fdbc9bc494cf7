// Package localstore defines the synchronous key/value mirror of the
// in-memory state. It is a resilience cache: reads never fail, they fall back.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/finsync/pkg/domain"
)

// Keys, one per persisted collection or field.
const (
	KeyTransactions  = "transactions"
	KeyAccounts      = "accounts"
	KeyMonths        = "months"
	KeyUserProfile   = "user_profile"
	KeyAppTheme      = "app_theme"
	KeyLongTerm      = "long_term_transactions"
	KeyNotifications = "notifications"
	KeyInvestments   = "investments"
	KeyCDIRate       = "cdi_rate"
	KeyNotepad       = "notepad_content"
	KeySession       = "user_session"
	KeySyncDirty     = "is_sync_dirty"
	// KeyOwner holds the normalized email the mirrored collections belong to.
	KeyOwner = "local_owner"
)

// ErrMissing is returned by Store.Get when a key has never been written.
var ErrMissing = errors.New("localstore: key not found")

// ErrSerialization marks a stored value that could not be decoded.
var ErrSerialization = fmt.Errorf("localstore: %w", domain.ErrSerialization)

// Store is a raw byte store. Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
}

// Load decodes the value under key into a T. Missing, unreadable or corrupt
// entries yield fallback.
func Load[T any](s Store, key string, fallback T, logger *slog.Logger) T {
	data, err := s.Get(key)
	if err != nil {
		if !errors.Is(err, ErrMissing) && logger != nil {
			logger.Warn("local store read failed, using fallback", "key", key, "error", err)
		}
		return fallback
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		if logger != nil {
			logger.Warn("local store entry is corrupt, using fallback",
				"key", key,
				"error", fmt.Errorf("%w: %v", ErrSerialization, err),
			)
		}
		return fallback
	}
	return v
}

// Save encodes v and writes it under key. A returned error is a soft failure:
// callers log it and mark the state dirty.
func Save(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := s.Put(key, data); err != nil {
		return fmt.Errorf("localstore: save %q: %w", key, err)
	}
	return nil
}
