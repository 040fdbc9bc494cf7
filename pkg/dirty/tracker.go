// Package dirty persists the flag recording that local state may be ahead of
// the remote store.
package dirty

import (
	"log/slog"
	"sync"

	"github.com/amirasaad/finsync/pkg/localstore"
)

// Tracker is the persisted is_sync_dirty flag. While dirty, session start
// trusts only the local store.
type Tracker struct {
	store  localstore.Store
	logger *slog.Logger
	mu     sync.Mutex
	dirty  bool
}

// NewTracker reads the persisted flag once.
func NewTracker(store localstore.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger.With("component", "dirty-flag"),
		dirty:  localstore.Load(store, localstore.KeySyncDirty, false, logger),
	}
}

func (t *Tracker) IsDirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// MarkDirty is called after a failed remote load or save.
func (t *Tracker) MarkDirty() {
	t.set(true)
}

// MarkClean is called after a successful remote save.
func (t *Tracker) MarkClean() {
	t.set(false)
}

func (t *Tracker) set(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dirty != v {
		t.logger.Debug("sync dirty flag changed", "dirty", v)
	}
	t.dirty = v
	if err := localstore.Save(t.store, localstore.KeySyncDirty, v); err != nil {
		t.logger.Warn("failed to persist dirty flag", "dirty", v, "error", err)
	}
}
