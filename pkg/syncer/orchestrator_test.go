package syncer_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/finsync/pkg/dirty"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/localstore"
	"github.com/amirasaad/finsync/pkg/remote"
	"github.com/amirasaad/finsync/pkg/syncer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const email = "ana@example.com"

func addTransaction(name string, amount float64) func(*domain.State) error {
	return func(st *domain.State) error {
		st.Transactions = append(st.Transactions, domain.Transaction{
			ID: name, Name: name, Amount: amount, Date: "20 Jan", Month: "JANEIRO", Year: "2025",
		})
		return nil
	}
}

func txCount(n int) any {
	return mock.MatchedBy(func(items []domain.Transaction) bool { return len(items) == n })
}

func startHydrated(t *testing.T, h *harness) {
	t.Helper()
	h.client.On("LoadUserData", mock.Anything, email).Return(remoteRecord(), nil).Once()
	require.NoError(t, h.orch.Start(context.Background(), " Ana@Example.com "))
	require.Equal(t, syncer.StatusReady, h.orch.Status())
}

func TestStart_HydratesFromRemote(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	st := h.orch.Snapshot()
	assert.Equal(t, email, h.orch.Email())
	assert.Len(t, st.Transactions, 1)
	assert.Equal(t, "jan", st.ActiveMonthID)
	assert.False(t, h.dirty.IsDirty())
	assert.True(t, h.client.subscribed())
	assert.Empty(t, h.sched.active(), "hydrated state must not be pushed back")

	local := localstore.Load(h.store, localstore.KeyTransactions, []domain.Transaction{}, slog.Default())
	assert.Equal(t, st.Transactions, local)
	h.client.AssertExpectations(t)
}

func TestApply_Idempotent(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	rec := remoteRecord()
	rec.NotepadContent = "lembrar do IPVA"
	h.client.push(remote.FullChange(rec))
	first := h.orch.Snapshot()
	h.client.push(remote.FullChange(rec))
	second := h.orch.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, "lembrar do IPVA", second.NotepadContent)
	assert.Empty(t, h.sched.active())

	// an unrelated local edit must not drag the applied fields along
	require.NoError(t, h.orch.Update(func(st *domain.State) error {
		st.CDIRate = 12
		return nil
	}))
	require.Len(t, h.sched.active(), 1)
	h.client.AssertNotCalled(t, "SaveCollection", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDebounce_CoalescesRapidEdits(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.orch.Update(addTransaction(fmt.Sprintf("tx-%d", i), 10)))
	}
	active := h.sched.active()
	require.Len(t, active, 1)
	assert.Equal(t, syncer.DefaultConfig().CollectionDelay, active[0].delay)

	local := localstore.Load(h.store, localstore.KeyTransactions, []domain.Transaction{}, slog.Default())
	assert.Len(t, local, 6, "local store is written before the debounce fires")

	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(6)).Return(true).Once()
	h.sched.fireAll()

	h.client.AssertNumberOfCalls(t, "SaveCollection", 1)
	h.client.AssertExpectations(t)
	assert.False(t, h.dirty.IsDirty())
}

func TestDebounce_RevertCancelsWrite(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	require.NoError(t, h.orch.Update(func(st *domain.State) error {
		st.NotepadContent = "rascunho"
		return nil
	}))
	require.Len(t, h.sched.active(), 1)
	assert.Equal(t, syncer.DefaultConfig().NotepadDelay, h.sched.active()[0].delay)

	require.NoError(t, h.orch.Update(func(st *domain.State) error {
		st.NotepadContent = ""
		return nil
	}))
	assert.Empty(t, h.sched.active())
	h.client.AssertNotCalled(t, "SaveField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlush_BaselineIsScheduledValue(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	require.NoError(t, h.orch.Update(addTransaction("a", 1)))
	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(2)).
		Run(func(mock.Arguments) {
			// edit while the write is in flight
			require.NoError(t, h.orch.Update(addTransaction("b", 2)))
		}).
		Return(true).Once()
	h.sched.fireAll()

	require.Len(t, h.sched.active(), 1, "the in-flight edit is still dirty")
	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(3)).Return(true).Once()
	h.sched.fireAll()
	h.client.AssertExpectations(t)
}

func TestRemoteWriteFailure_DirtyThenLocalOnlyStart(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	require.NoError(t, h.orch.Update(addTransaction("offline", 42)))
	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(2)).Return(false).Once()
	h.sched.fireAll()
	assert.True(t, h.dirty.IsDirty())

	// next session on the same device
	next := &harness{client: &mockClient{}, store: h.store, sched: &fakeScheduler{}}
	next.dirty = dirty.NewTracker(next.store, slog.Default())
	next.orch = syncer.New(next.client, next.store, next.dirty, syncer.DefaultConfig(), slog.Default(),
		syncer.WithScheduler(next.sched.schedule),
		syncer.WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, next.orch.Start(context.Background(), email))

	next.client.AssertNotCalled(t, "LoadUserData", mock.Anything, mock.Anything)
	st := next.orch.Snapshot()
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, "offline", st.Transactions[1].Name)
	assert.True(t, next.dirty.IsDirty())
	assert.Len(t, next.sched.active(), 10, "every binding is re-pushed from a local-only start")

	next.client.On("SaveCollection", mock.Anything, email, mock.Anything, mock.Anything).Return(true)
	next.client.On("SaveField", mock.Anything, email, mock.Anything, mock.Anything).Return(true)
	next.sched.fireAll()
	assert.False(t, next.dirty.IsDirty())
}

func TestStart_RemoteErrorFallsBackToLocal(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, localstore.Save(h.store, localstore.KeyNotepad, "salvo localmente"))
	h.client.On("LoadUserData", mock.Anything, email).Return(nil, errors.New("connection reset")).Once()

	require.NoError(t, h.orch.Start(context.Background(), email))
	assert.Equal(t, syncer.StatusReady, h.orch.Status())
	assert.Equal(t, "salvo localmente", h.orch.Snapshot().NotepadContent)
	assert.True(t, h.dirty.IsDirty())
}

func TestStart_NotFoundLoadsLocal(t *testing.T) {
	h := newHarness(t)
	h.client.On("LoadUserData", mock.Anything, email).Return(nil, nil).Once()

	require.NoError(t, h.orch.Start(context.Background(), email))
	st := h.orch.Snapshot()
	assert.False(t, h.dirty.IsDirty())
	assert.InDelta(t, domain.DefaultCDIRate, st.CDIRate, 0.0001)
	require.Len(t, st.Months, 1, "a starter month is created")
	assert.Equal(t, "JANEIRO", st.Months[0].Month)
	assert.Equal(t, st.Months[0].ID, st.ActiveMonthID)
	assert.NotNil(t, st.Transactions)

	require.ErrorIs(t, h.orch.Start(context.Background(), email), syncer.ErrSessionActive)
}

func TestUpdate_GuardedUntilReady(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.orch.Update(addTransaction("x", 1)), syncer.ErrNotReady)

	release := make(chan struct{})
	h.client.On("LoadUserData", mock.Anything, email).
		Run(func(mock.Arguments) { <-release }).
		Return(remoteRecord(), nil).Once()

	done := make(chan error, 1)
	go func() { done <- h.orch.Start(context.Background(), email) }()

	require.Eventually(t, func() bool { return h.orch.Status() == syncer.StatusLoading }, time.Second, 5*time.Millisecond)
	require.ErrorIs(t, h.orch.Update(addTransaction("x", 1)), syncer.ErrNotReady)
	assert.Empty(t, h.sched.active())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, syncer.StatusReady, h.orch.Status())
	assert.Empty(t, h.sched.active())
}

func TestUpdate_ErrorLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	boom := errors.New("boom")
	err := h.orch.Update(func(st *domain.State) error {
		st.Transactions = nil
		st.NotepadContent = "half done"
		return boom
	})
	require.ErrorIs(t, err, boom)
	st := h.orch.Snapshot()
	assert.Len(t, st.Transactions, 1)
	assert.Empty(t, st.NotepadContent)
	assert.Empty(t, h.sched.active())
}

func TestRealtime_PendingLocalEditWins(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	require.NoError(t, h.orch.Update(addTransaction("local", 5)))

	incoming := []domain.Transaction{{ID: "other", Name: "Outro dispositivo", Amount: 1}}
	note := "vindo do celular"
	h.client.push(remote.Change{Email: email, Transactions: &incoming, NotepadContent: &note})

	st := h.orch.Snapshot()
	assert.Len(t, st.Transactions, 2)
	assert.Equal(t, note, st.NotepadContent)
	require.Len(t, h.sched.active(), 1, "realtime apply neither resets nor adds timers")

	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(2)).Return(true).Once()
	h.sched.fireAll()
	h.client.AssertExpectations(t)
}

func TestRealtime_EchoDoesNotRetrigger(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	require.NoError(t, h.orch.Update(addTransaction("local", 5)))
	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(2)).Return(true).Once()
	h.sched.fireAll()

	echo := h.orch.Snapshot().Transactions
	h.client.push(remote.Change{Email: email, Transactions: &echo})
	assert.Empty(t, h.sched.active())

	// changes for another user are ignored
	other := []domain.Transaction{}
	h.client.push(remote.Change{Email: "bob@example.com", Transactions: &other})
	assert.Len(t, h.orch.Snapshot().Transactions, 2)
	h.client.AssertNumberOfCalls(t, "SaveCollection", 1)
}

func TestRealtime_ActiveMonthFollowsRemovedMonth(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	months := []domain.MonthSummary{
		{ID: "dez", Month: "DEZEMBRO", Year: "2024"},
		{ID: "fev", Month: "FEVEREIRO", Year: "2025"},
	}
	h.client.push(remote.Change{Email: email, Months: &months})
	st := h.orch.Snapshot()
	assert.Equal(t, "fev", st.ActiveMonthID)
	assert.Empty(t, h.sched.active())
}

func TestStop_FlushesAndResets(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	require.NoError(t, h.orch.Update(addTransaction("late", 9)))
	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(2)).Return(true).Once()

	h.orch.Stop(context.Background())

	h.client.AssertExpectations(t)
	assert.Equal(t, syncer.StatusAnonymous, h.orch.Status())
	assert.Empty(t, h.orch.Snapshot().Transactions)
	assert.False(t, h.client.subscribed())
	assert.Empty(t, h.sched.active())

	// stale timers from the old session do nothing
	for _, tm := range h.sched.timers {
		tm.f()
	}
	h.client.AssertNumberOfCalls(t, "SaveCollection", 1)
}

func TestSetPushSubscription(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.orch.SetPushSubscription(context.Background(), []byte(`{}`)), syncer.ErrNotReady)

	startHydrated(t, h)
	h.client.On("SaveField", mock.Anything, email, remote.FieldPushSubscription, mock.Anything).Return(false).Once()
	require.NoError(t, h.orch.SetPushSubscription(context.Background(), []byte(`{"endpoint":"https://push"}`)))
	assert.False(t, h.dirty.IsDirty())
	h.client.AssertExpectations(t)
}

func TestStart_OtherUserDiscardsLocalStore(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	require.NoError(t, h.orch.Update(addTransaction("secret-of-ana", 999)))
	h.client.On("SaveCollection", mock.Anything, email, remote.CollectionTransactions, txCount(2)).Return(false)
	h.orch.Stop(context.Background())
	require.True(t, h.dirty.IsDirty())

	bob := &domain.UserRecord{
		Email:        "bob@example.com",
		Months:       []domain.MonthSummary{{ID: "jan-bob", Month: "JANEIRO", Year: "2025"}},
		Transactions: []domain.Transaction{},
	}
	h.client.On("LoadUserData", mock.Anything, "bob@example.com").Return(bob, nil).Once()
	require.NoError(t, h.orch.Start(context.Background(), "bob@example.com"))

	st := h.orch.Snapshot()
	assert.Empty(t, st.Transactions)
	assert.False(t, h.dirty.IsDirty())
	assert.Empty(t, h.sched.active(), "nothing of the previous user is pushed")
	h.client.AssertNotCalled(t, "SaveCollection", mock.Anything, "bob@example.com", mock.Anything, mock.Anything)

	local := localstore.Load(h.store, localstore.KeyTransactions, []domain.Transaction{{ID: "stale"}}, slog.Default())
	assert.Empty(t, local)
	assert.Equal(t, "bob@example.com", localstore.Load(h.store, localstore.KeyOwner, "", slog.Default()))
}

func TestStart_OtherUserWhileRemoteDown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, localstore.Save(h.store, localstore.KeyOwner, email))
	require.NoError(t, localstore.Save(h.store, localstore.KeyNotepad, "nota da ana"))
	h.dirty.MarkDirty()

	h.client.On("LoadUserData", mock.Anything, "bob@example.com").Return(nil, errors.New("offline")).Once()
	require.NoError(t, h.orch.Start(context.Background(), "bob@example.com"))
	assert.Empty(t, h.orch.Snapshot().NotepadContent)
}

func TestRealtime_MirroredToLocalStore(t *testing.T) {
	h := newHarness(t)
	startHydrated(t, h)

	incoming := []domain.Transaction{{ID: "t9", Name: "FromOtherDevice", Amount: 7, Date: "12 Jan"}}
	note := "do celular"
	h.client.push(remote.Change{Email: email, Transactions: &incoming, NotepadContent: &note})

	local := localstore.Load(h.store, localstore.KeyTransactions, []domain.Transaction{}, slog.Default())
	require.Len(t, local, 1)
	assert.Equal(t, "FromOtherDevice", local[0].Name)
	assert.Equal(t, note, localstore.Load(h.store, localstore.KeyNotepad, "", slog.Default()))
	assert.Empty(t, h.sched.active())
}
