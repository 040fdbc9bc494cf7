// Package syncer reconciles the in-memory state of a session with the local
// store and the remote store. Local writes are immediate; remote writes are
// debounced per collection; realtime pushes are applied without echoing them
// back.
package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/finsync/pkg/dirty"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/localstore"
	"github.com/amirasaad/finsync/pkg/remote"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusAnonymous Status = iota
	StatusLoading
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return "anonymous"
	}
}

var (
	// ErrNotReady is returned by mutations outside the ready state.
	ErrNotReady = errors.New("sync: session not ready")
	// ErrSessionActive is returned by Start when a session is already running.
	ErrSessionActive = errors.New("sync: session already started")
)

// Timer is a pending debounced call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Timer

// RealScheduler schedules on the runtime timer.
func RealScheduler(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config tunes the debounce windows and remote call timeout.
type Config struct {
	CollectionDelay time.Duration
	FieldDelay      time.Duration
	NotepadDelay    time.Duration
	RemoteTimeout   time.Duration
}

// DefaultConfig returns the standard debounce windows.
func DefaultConfig() Config {
	return Config{
		CollectionDelay: 1200 * time.Millisecond,
		FieldDelay:      1500 * time.Millisecond,
		NotepadDelay:    2500 * time.Millisecond,
		RemoteTimeout:   10 * time.Second,
	}
}

type pendingWrite struct {
	timer Timer
	data  []byte
	sum   string
}

// Orchestrator owns the state of one session and is the only writer of the
// dirty flag and the sync baselines.
type Orchestrator struct {
	remote   remote.Client
	local    localstore.Store
	dirty    *dirty.Tracker
	cfg      Config
	schedule Scheduler
	now      func() time.Time
	logger   *slog.Logger
	bindings []binding

	mu          sync.Mutex
	status      Status
	session     uint64
	email       string
	state       domain.State
	baselines   map[Key]string
	seen        map[Key]string
	pending     map[Key]*pendingWrite
	unsubscribe func()
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithScheduler replaces the debounce timer source.
func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) { o.schedule = s }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator in the anonymous state.
func New(
	client remote.Client,
	local localstore.Store,
	tracker *dirty.Tracker,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		remote:   client,
		local:    local,
		dirty:    tracker,
		cfg:      cfg,
		schedule: RealScheduler,
		now:      time.Now,
		logger:   logger.With("component", "sync"),
		bindings: newBindings(cfg),
		state:    domain.NewState(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.resetLocked()
	return o
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) Email() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.email
}

// Snapshot returns a deep copy of the current state.
func (o *Orchestrator) Snapshot() domain.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	st, err := cloneState(o.state)
	if err != nil {
		o.logger.Error("failed to copy state", "error", err)
	}
	return st
}

// Start hydrates the session for email. A dirty flag means the local store is
// the only trusted source; otherwise the remote record wins when present and
// the local store is the fallback.
func (o *Orchestrator) Start(ctx context.Context, email string) error {
	o.mu.Lock()
	if o.status != StatusAnonymous {
		o.mu.Unlock()
		return ErrSessionActive
	}
	o.resetLocked()
	o.session++
	session := o.session
	o.status = StatusLoading
	o.email = domain.NormalizeEmail(email)
	email = o.email
	o.claimLocalLocked(email)
	o.mu.Unlock()

	if o.dirty.IsDirty() {
		o.logger.Info("local state is ahead of remote, loading local store only", "email", email)
		o.mu.Lock()
		o.loadLocalLocked()
		o.readyLocked()
		o.mu.Unlock()
	} else {
		rctx, cancel := context.WithTimeout(ctx, o.cfg.RemoteTimeout)
		rec, err := o.remote.LoadUserData(rctx, email)
		cancel()

		o.mu.Lock()
		if o.session != session {
			o.mu.Unlock()
			return nil
		}
		switch {
		case err != nil:
			o.logger.Warn("remote load failed, falling back to local store",
				"email", email,
				"error", fmt.Errorf("%w: %v", domain.ErrTransientSync, err),
			)
			o.loadLocalLocked()
			o.dirty.MarkDirty()
		case rec == nil:
			o.logger.Info("no remote record, loading local store", "email", email)
			o.loadLocalLocked()
		default:
			o.applyLocked(remote.FullChange(rec), true)
			o.persistLocalLocked()
			o.dirty.MarkClean()
		}
		o.readyLocked()
		o.mu.Unlock()
	}

	unsubscribe, err := o.remote.SubscribeToChanges(ctx, email, func(ch remote.Change) {
		o.onRemoteChange(session, ch)
	})
	if err != nil {
		o.logger.Warn("realtime subscription unavailable", "email", email, "error", err)
		return nil
	}
	o.mu.Lock()
	if o.session != session {
		o.mu.Unlock()
		unsubscribe()
		return nil
	}
	o.unsubscribe = unsubscribe
	o.mu.Unlock()
	return nil
}

// Stop ends the session: pending remote writes are flushed, the realtime
// subscription is closed and the state reset.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.mu.Lock()
	email := o.email
	var flush []struct {
		b *binding
		p *pendingWrite
	}
	for i := range o.bindings {
		b := &o.bindings[i]
		if p := o.pending[b.key]; p != nil {
			p.timer.Stop()
			flush = append(flush, struct {
				b *binding
				p *pendingWrite
			}{b, p})
		}
	}
	unsubscribe := o.unsubscribe
	o.session++
	o.resetLocked()
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	failed := 0
	for _, f := range flush {
		if !o.pushOnce(ctx, f.b, email, f.p.data) {
			failed++
		}
	}
	switch {
	case failed > 0:
		o.dirty.MarkDirty()
	case len(flush) > 0:
		o.dirty.MarkClean()
	}
	o.logger.Info("session stopped", "email", email, "flushed", len(flush))
}

// Update applies fn to a copy of the state and commits it when fn succeeds.
// Every committed change goes to the local store at once and is scheduled for
// a debounced remote write.
func (o *Orchestrator) Update(fn func(*domain.State) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusReady {
		return ErrNotReady
	}
	next, err := cloneState(o.state)
	if err != nil {
		return err
	}
	if err := fn(&next); err != nil {
		return err
	}
	normalize(&next)
	o.state = next
	o.detectLocked()
	return nil
}

// SetPushSubscription stores the host push subscription on the remote record.
func (o *Orchestrator) SetPushSubscription(ctx context.Context, sub json.RawMessage) error {
	o.mu.Lock()
	if o.status != StatusReady {
		o.mu.Unlock()
		return ErrNotReady
	}
	email := o.email
	o.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, o.cfg.RemoteTimeout)
	defer cancel()
	if !o.remote.SaveField(rctx, email, remote.FieldPushSubscription, sub) {
		o.logger.Warn("push subscription not stored", "email", email)
	}
	return nil
}

func (o *Orchestrator) onRemoteChange(session uint64, ch remote.Change) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != session || o.status != StatusReady {
		return
	}
	if ch.Email != "" && domain.NormalizeEmail(ch.Email) != o.email {
		return
	}
	for _, b := range o.applyLocked(ch, false) {
		if err := localstore.Save(o.local, b.localKey, b.value(&o.state)); err != nil {
			o.logger.Warn("local store write failed", "key", b.localKey, "error", err)
		}
	}
	o.fixActiveMonthLocked()
}

// applyLocked replaces the bound parts carried by ch and moves their
// baselines in the same step, so the next detection pass sees no change.
// Realtime changes skip bindings with a pending local edit. It returns the
// bindings that were replaced.
func (o *Orchestrator) applyLocked(ch remote.Change, hydrate bool) []*binding {
	applied := make([]*binding, 0, len(o.bindings))
	for i := range o.bindings {
		b := &o.bindings[i]
		if !hydrate && o.pending[b.key] != nil {
			o.logger.Debug("remote change skipped, local edit pending", "key", b.key)
			continue
		}
		if b.apply(&o.state, ch) {
			applied = append(applied, b)
		}
	}
	normalize(&o.state)
	for _, b := range applied {
		data, err := json.Marshal(b.value(&o.state))
		if err != nil {
			o.logger.Error("failed to encode applied value", "key", b.key, "error", err)
			continue
		}
		sum := digest(data)
		o.baselines[b.key] = sum
		o.seen[b.key] = sum
	}
	return applied
}

// detectLocked compares every binding with what was last seen and with its
// baseline. New values go to the local store immediately and (re)start the
// binding's debounce timer.
func (o *Orchestrator) detectLocked() {
	if o.status != StatusReady {
		return
	}
	for i := range o.bindings {
		b := &o.bindings[i]
		data, err := json.Marshal(b.value(&o.state))
		if err != nil {
			o.logger.Error("failed to encode state", "key", b.key, "error", err)
			continue
		}
		sum := digest(data)
		if o.seen[b.key] == sum {
			continue
		}
		o.seen[b.key] = sum
		if o.baselines[b.key] == sum {
			o.cancelLocked(b.key)
			continue
		}
		if err := o.local.Put(b.localKey, data); err != nil {
			o.logger.Warn("local store write failed", "key", b.localKey, "error", err)
			o.dirty.MarkDirty()
		}
		o.scheduleLocked(b, data, sum)
	}
}

func (o *Orchestrator) scheduleLocked(b *binding, data []byte, sum string) {
	o.cancelLocked(b.key)
	p := &pendingWrite{data: data, sum: sum}
	o.pending[b.key] = p
	session, email := o.session, o.email
	p.timer = o.schedule(b.delay, func() {
		o.flush(session, email, b, p)
	})
}

func (o *Orchestrator) cancelLocked(key Key) {
	if p := o.pending[key]; p != nil {
		p.timer.Stop()
		delete(o.pending, key)
	}
}

// flush performs one debounced remote write. The baseline moves to the value
// captured when the write was scheduled, not to whatever the state holds
// when the write returns.
func (o *Orchestrator) flush(session uint64, email string, b *binding, p *pendingWrite) {
	o.mu.Lock()
	if o.session != session || o.pending[b.key] != p {
		o.mu.Unlock()
		return
	}
	delete(o.pending, b.key)
	o.mu.Unlock()

	ok := o.pushOnce(context.Background(), b, email, p.data)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != session {
		return
	}
	if ok {
		o.dirty.MarkClean()
	} else {
		o.logger.Warn("remote write failed, local store stays authoritative",
			"key", b.key,
			"error", domain.ErrTransientSync,
		)
		o.dirty.MarkDirty()
	}
	o.baselines[b.key] = p.sum
}

func (o *Orchestrator) pushOnce(ctx context.Context, b *binding, email string, data []byte) bool {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RemoteTimeout)
	defer cancel()
	return b.push(ctx, o.remote, email, data)
}

// claimLocalLocked discards the mirrored collections and the dirty flag when
// they were written for another user, then records email as their owner.
// A store without an owner is adopted as is.
func (o *Orchestrator) claimLocalLocked(email string) {
	owner := localstore.Load(o.local, localstore.KeyOwner, "", o.logger)
	if owner == email {
		return
	}
	if owner != "" {
		o.logger.Info("local store belongs to another user, discarding it", "email", email)
		for i := range o.bindings {
			key := o.bindings[i].localKey
			if err := o.local.Delete(key); err != nil && !errors.Is(err, localstore.ErrMissing) {
				o.logger.Warn("local store delete failed", "key", key, "error", err)
			}
		}
		o.dirty.MarkClean()
	}
	if err := localstore.Save(o.local, localstore.KeyOwner, email); err != nil {
		o.logger.Warn("local store owner not recorded", "email", email, "error", err)
	}
}

func (o *Orchestrator) loadLocalLocked() {
	for i := range o.bindings {
		o.bindings[i].load(o.local, &o.state, o.logger)
	}
	normalize(&o.state)
}

func (o *Orchestrator) persistLocalLocked() {
	for i := range o.bindings {
		b := &o.bindings[i]
		if err := localstore.Save(o.local, b.localKey, b.value(&o.state)); err != nil {
			o.logger.Warn("local store write failed", "key", b.localKey, "error", err)
		}
	}
}

func (o *Orchestrator) readyLocked() {
	o.status = StatusReady
	if len(o.state.Months) == 0 {
		p := domain.PartitionOf(o.now())
		o.state.Months = []domain.MonthSummary{{ID: domain.NewID(), Month: p.Month, Year: p.Year}}
	}
	o.fixActiveMonthLocked()
	o.logger.Info("session ready",
		"email", o.email,
		"transactions", len(o.state.Transactions),
		"months", len(o.state.Months),
	)
	o.detectLocked()
}

// fixActiveMonthLocked keeps ActiveMonthID pointing at an existing month,
// preferring the current calendar month, then the latest one.
func (o *Orchestrator) fixActiveMonthLocked() {
	o.state.SortMonths()
	if _, ok := o.state.ActiveMonth(); ok || len(o.state.Months) == 0 {
		return
	}
	if ms, ok := o.state.MonthFor(domain.PartitionOf(o.now())); ok {
		o.state.ActiveMonthID = ms.ID
		return
	}
	o.state.ActiveMonthID = o.state.Months[len(o.state.Months)-1].ID
}

func (o *Orchestrator) resetLocked() {
	for _, p := range o.pending {
		p.timer.Stop()
	}
	o.status = StatusAnonymous
	o.email = ""
	o.state = domain.NewState()
	o.baselines = make(map[Key]string)
	o.seen = make(map[Key]string)
	o.pending = make(map[Key]*pendingWrite)
	o.unsubscribe = nil
}

func normalize(st *domain.State) {
	st.Transactions = nonNil(st.Transactions)
	st.Accounts = nonNil(st.Accounts)
	st.Investments = nonNil(st.Investments)
	st.LongTerm = nonNil(st.LongTerm)
	st.Notifications = nonNil(st.Notifications)
	st.Months = nonNil(st.Months)
	st.SortMonths()
}

func cloneState(st domain.State) (domain.State, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return st, fmt.Errorf("sync: copy state: %w", err)
	}
	var out domain.State
	if err := json.Unmarshal(data, &out); err != nil {
		return st, fmt.Errorf("sync: copy state: %w", err)
	}
	return out, nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
