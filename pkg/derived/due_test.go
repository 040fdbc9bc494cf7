package derived_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatched struct {
	title, body, icon, tag string
}

func recordingDispatcher(err error) (notify.Dispatcher, chan dispatched) {
	ch := make(chan dispatched, 10)
	return notify.DispatcherFunc(func(_ context.Context, title, body, icon, tag string) error {
		ch <- dispatched{title, body, icon, tag}
		return err
	}), ch
}

func TestScan_DedupesSameDay(t *testing.T) {
	today := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	d, ch := recordingDispatcher(nil)
	s := derived.NewScanner(derived.ScanConfig{NotificationsAllowed: true, IconURL: "/icon.png"}, d,
		func() time.Time { return today }, slog.Default())

	txs := []domain.Transaction{
		{ID: "a", Name: "Energia", Amount: 210.4, Date: "10 Mar"},
		{ID: "b", Name: "Água", Amount: 80, Date: "2025-03-10", Paid: true},
		{ID: "c", Name: "Cartão", Amount: 950, Date: "11 Mar"},
	}

	var notifications []domain.AppNotification
	first := s.Scan(context.Background(), txs, notifications)
	require.Len(t, first, 1)
	assert.Equal(t, "2025-03-10", first[0].Date)
	assert.Contains(t, first[0].Message, "Energia")
	assert.Equal(t, domain.NotificationKindDueBill, first[0].Kind)
	notifications = append(notifications, first...)

	second := s.Scan(context.Background(), txs, notifications)
	assert.Empty(t, second)

	select {
	case got := <-ch:
		assert.Equal(t, "/icon.png", got.icon)
		assert.Equal(t, "due-a-2025-03-10", got.tag)
	case <-time.After(time.Second):
		t.Fatal("expected a dispatch")
	}
	assert.Never(t, func() bool { return len(ch) > 0 }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestScan_NextDayNotifiesAgain(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	s := derived.NewScanner(derived.ScanConfig{}, nil, func() time.Time { return now }, slog.Default())
	txs := []domain.Transaction{{ID: "a", Name: "Streaming", Amount: 39.9, Date: "Hoje"}}

	first := s.Scan(context.Background(), txs, nil)
	require.Len(t, first, 1)

	now = now.AddDate(0, 0, 1)
	second := s.Scan(context.Background(), txs, first)
	assert.Len(t, second, 1)
}

func TestScan_DispatchFailureIgnored(t *testing.T) {
	today := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	d, ch := recordingDispatcher(errors.New("no service worker"))
	s := derived.NewScanner(derived.ScanConfig{NotificationsAllowed: true}, d,
		func() time.Time { return today }, slog.Default())

	got := s.Scan(context.Background(), []domain.Transaction{{ID: "a", Name: "Gás", Amount: 60, Date: "10 Mar"}}, nil)
	assert.Len(t, got, 1)
	require.Eventually(t, func() bool { return len(ch) == 1 }, time.Second, 10*time.Millisecond)
}

func TestScan_PermissionDeniedSkipsDispatch(t *testing.T) {
	today := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	d, ch := recordingDispatcher(nil)
	s := derived.NewScanner(derived.ScanConfig{NotificationsAllowed: false}, d,
		func() time.Time { return today }, slog.Default())

	got := s.Scan(context.Background(), []domain.Transaction{{ID: "a", Name: "Gás", Amount: 60, Date: "10 Mar"}}, nil)
	assert.Len(t, got, 1)
	assert.Never(t, func() bool { return len(ch) > 0 }, 50*time.Millisecond, 10*time.Millisecond)
}
