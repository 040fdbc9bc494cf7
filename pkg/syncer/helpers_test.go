package syncer_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	infra_localstore "github.com/amirasaad/finsync/infra/localstore"
	"github.com/amirasaad/finsync/pkg/dirty"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/remote"
	"github.com/amirasaad/finsync/pkg/syncer"
	"github.com/stretchr/testify/mock"
)

// mockClient is a testify mock of remote.Client.
type mockClient struct {
	mock.Mock
	mu       sync.Mutex
	onChange func(remote.Change)
}

func (m *mockClient) Login(ctx context.Context, email string) (*domain.UserRecord, error) {
	args := m.Called(ctx, email)
	rec, _ := args.Get(0).(*domain.UserRecord)
	return rec, args.Error(1)
}

func (m *mockClient) Register(ctx context.Context, email, name string, initial remote.Change) (*domain.UserRecord, error) {
	args := m.Called(ctx, email, name, initial)
	rec, _ := args.Get(0).(*domain.UserRecord)
	return rec, args.Error(1)
}

func (m *mockClient) LoadUserData(ctx context.Context, email string) (*domain.UserRecord, error) {
	args := m.Called(ctx, email)
	rec, _ := args.Get(0).(*domain.UserRecord)
	return rec, args.Error(1)
}

func (m *mockClient) SaveCollection(ctx context.Context, email string, name remote.Collection, items any) bool {
	return m.Called(ctx, email, name, items).Bool(0)
}

func (m *mockClient) SaveField(ctx context.Context, email string, name remote.Field, value any) bool {
	return m.Called(ctx, email, name, value).Bool(0)
}

func (m *mockClient) SubscribeToChanges(_ context.Context, email string, onChange func(remote.Change)) (func(), error) {
	m.mu.Lock()
	m.onChange = onChange
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.onChange = nil
		m.mu.Unlock()
	}, nil
}

// push simulates a realtime delivery.
func (m *mockClient) push(ch remote.Change) {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn(ch)
	}
}

func (m *mockClient) subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onChange != nil
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeScheduler collects timers and fires them on demand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) syncer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) active() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeScheduler) fireAll() {
	for _, t := range s.active() {
		t.fired = true
		t.f()
	}
}

var testNow = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	client *mockClient
	store  *infra_localstore.Memory
	dirty  *dirty.Tracker
	sched  *fakeScheduler
	orch   *syncer.Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		client: &mockClient{},
		store:  infra_localstore.NewMemory(),
		sched:  &fakeScheduler{},
	}
	h.dirty = dirty.NewTracker(h.store, slog.Default())
	h.orch = syncer.New(h.client, h.store, h.dirty, syncer.DefaultConfig(), slog.Default(),
		syncer.WithScheduler(h.sched.schedule),
		syncer.WithClock(func() time.Time { return testNow }),
	)
	return h
}

func remoteRecord() *domain.UserRecord {
	return &domain.UserRecord{
		Email:   "ana@example.com",
		Profile: domain.UserProfile{Name: "Ana", AvatarURL: "/avatar.png"},
		Months:  []domain.MonthSummary{{ID: "jan", Month: "JANEIRO", Year: "2025", Total: 100}},
		CDIRate: 11.25,
		Transactions: []domain.Transaction{
			{ID: "t1", Name: "Luz", Amount: 100, Date: "10 Jan", Month: "JANEIRO", Year: "2025"},
		},
		Accounts:      []domain.Account{{ID: "a1", Name: "Salário", Balance: 3000}},
		Investments:   []domain.Investment{},
		Notifications: []domain.AppNotification{},
		LongTerm:      []domain.LongTermTransaction{},
	}
}
