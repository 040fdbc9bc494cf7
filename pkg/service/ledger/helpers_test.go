package ledger

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/stretchr/testify/require"
)

// memState is an Updater that commits a deep copy only when fn succeeds.
type memState struct {
	st domain.State
}

func (m *memState) Update(fn func(*domain.State) error) error {
	data, err := json.Marshal(m.st)
	if err != nil {
		return err
	}
	var next domain.State
	if err := json.Unmarshal(data, &next); err != nil {
		return err
	}
	if err := fn(&next); err != nil {
		return err
	}
	m.st = next
	return nil
}

func (m *memState) Snapshot() domain.State { return m.st }

var testNow = time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memState) {
	t.Helper()
	st := domain.NewState()
	st.Months = []domain.MonthSummary{{ID: "jan", Month: "JANEIRO", Year: "2025"}}
	st.ActiveMonthID = "jan"
	m := &memState{st: st}
	return New(m, func() time.Time { return testNow }, slog.Default()), m
}

func monthTotal(t *testing.T, m *memState, id string) float64 {
	t.Helper()
	ms, ok := m.st.MonthByID(id)
	require.True(t, ok, "month %s", id)
	return ms.Total
}
