package months_test

import (
	"testing"
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/months"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func januaryState() *domain.State {
	st := domain.NewState()
	st.Months = []domain.MonthSummary{{ID: "jan", Month: "JANEIRO", Year: "2025", Total: 1650}}
	st.ActiveMonthID = "jan"
	st.Transactions = []domain.Transaction{
		{ID: "t1", Name: "Aluguel", Amount: 1500, Date: "05 Jan", Paid: true},
		{ID: "t2", Name: "Internet", Amount: 100, Date: "2025-01-31", Month: "JANEIRO", Year: "2025"},
		{ID: "t3", Name: "Mercado", Amount: 50, Date: "Hoje 08:00", Paid: true},
		{ID: "t4", Name: "Velho", Amount: 999, Date: "10 Dez", Month: "DEZEMBRO", Year: "2024"},
	}
	st.Accounts = []domain.Account{
		{ID: "a1", Name: "Salário", Balance: 5000},
		{ID: "a2", Name: "Freela", Balance: 800, Month: "JANEIRO", Year: "2025"},
	}
	return &st
}

func TestDuplicateNext(t *testing.T) {
	st := januaryState()
	m := months.NewManager(clock)

	summary, err := m.DuplicateNext(st)
	require.NoError(t, err)

	assert.Equal(t, "FEVEREIRO", summary.Month)
	assert.Equal(t, "2025", summary.Year)
	assert.InDelta(t, 1650, summary.Total, 0.001)
	assert.Equal(t, summary.ID, st.ActiveMonthID)
	require.Len(t, st.Months, 2)
	assert.Equal(t, "JANEIRO", st.Months[0].Month)

	require.Len(t, st.Transactions, 7)
	clones := st.Transactions[4:]
	for _, c := range clones {
		assert.False(t, c.Paid)
		assert.Equal(t, "FEVEREIRO", c.Month)
		assert.Equal(t, "2025", c.Year)
		assert.NotContains(t, []string{"t1", "t2", "t3"}, c.ID)
	}
	assert.Equal(t, "05 Fev", clones[0].Date)
	assert.Equal(t, "2025-03-03", clones[1].Date)
	assert.Equal(t, "2025-02-01", clones[2].Date)

	require.Len(t, st.Accounts, 3)
	assert.Equal(t, "Freela", st.Accounts[2].Name)
	assert.Equal(t, "FEVEREIRO", st.Accounts[2].Month)
}

func TestDuplicateNext_WrapsYear(t *testing.T) {
	st := domain.NewState()
	st.Months = []domain.MonthSummary{{ID: "dez", Month: "DEZEMBRO", Year: "2024"}}
	st.ActiveMonthID = "dez"
	st.Transactions = []domain.Transaction{{ID: "t", Name: "Seguro", Amount: 70, Date: "15 Dez"}}

	summary, err := months.NewManager(clock).DuplicateNext(&st)
	require.NoError(t, err)
	assert.Equal(t, domain.Partition{Month: "JANEIRO", Year: "2025"}, summary.Partition())
	assert.Equal(t, "15 Jan", st.Transactions[1].Date)
}

func TestDuplicateNext_RejectsExisting(t *testing.T) {
	st := januaryState()
	st.Months = append(st.Months, domain.MonthSummary{ID: "feb", Month: "FEVEREIRO", Year: "2025"})
	before := append([]domain.MonthSummary(nil), st.Months...)
	txCount := len(st.Transactions)

	_, err := months.NewManager(clock).DuplicateNext(st)
	require.ErrorIs(t, err, months.ErrMonthExists)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, before, st.Months)
	assert.Len(t, st.Transactions, txCount)
	assert.Equal(t, "jan", st.ActiveMonthID)
}

func TestSelect(t *testing.T) {
	st := januaryState()
	m := months.NewManager(clock)
	require.ErrorIs(t, m.Select(st, "missing"), domain.ErrNotFound)
	st.Months = append(st.Months, domain.MonthSummary{ID: "feb", Month: "FEVEREIRO", Year: "2025"})
	require.NoError(t, m.Select(st, "feb"))
	assert.Equal(t, "feb", st.ActiveMonthID)
}

func TestDelete(t *testing.T) {
	st := januaryState()
	m := months.NewManager(clock)
	require.ErrorIs(t, m.Delete(st, "jan"), months.ErrLastMonth)
	assert.Len(t, st.Months, 1)

	_, err := m.DuplicateNext(st)
	require.NoError(t, err)
	require.NoError(t, m.Select(st, "jan"))

	require.NoError(t, m.Delete(st, "jan"))
	require.Len(t, st.Months, 1)
	assert.Equal(t, "FEVEREIRO", st.Months[0].Month)
	assert.Equal(t, st.Months[0].ID, st.ActiveMonthID)

	for _, tx := range st.Transactions {
		assert.NotContains(t, []string{"t1", "t2", "t3"}, tx.ID)
	}
	assert.Len(t, st.Transactions, 4, "december transaction and february clones survive")
	assert.Len(t, st.Accounts, 2, "global account and february clone survive")
}

func TestAdjustTotalAndRecompute(t *testing.T) {
	st := januaryState()
	jan := domain.Partition{Month: "JANEIRO", Year: "2025"}
	months.AdjustTotal(st, jan, -0.1)
	assert.InDelta(t, 1649.9, st.Months[0].Total, 0.0001)
	months.AdjustTotal(st, domain.Partition{Month: "MAIO", Year: "2030"}, 10)

	assert.InDelta(t, 1650, months.Recompute(st, jan, now), 0.0001)
	assert.InDelta(t, 1650, st.Months[0].Total, 0.0001)
}

func TestEnsure(t *testing.T) {
	st := domain.NewState()
	m := months.NewManager(clock)
	first := m.Ensure(&st, domain.Partition{Month: "MARÇO", Year: "2025"})
	assert.Equal(t, first.ID, st.ActiveMonthID)

	m.Ensure(&st, domain.Partition{Month: "JANEIRO", Year: "2025"})
	again := m.Ensure(&st, domain.Partition{Month: "MARÇO", Year: "2025"})
	assert.Len(t, st.Months, 2)
	assert.Equal(t, "JANEIRO", st.Months[0].Month)
	assert.Equal(t, "MARÇO", again.Month)
}

func TestAdvanceDate(t *testing.T) {
	feb := domain.Partition{Month: "FEVEREIRO", Year: "2025"}
	assert.Equal(t, "24 Fev", months.AdvanceDate("24 Jan", feb))
	assert.Equal(t, "2025-02-15T10:00:00Z", months.AdvanceDate("2025-01-15T10:00:00Z", feb))
	assert.Equal(t, "2025-02-01", months.AdvanceDate("Hoje", feb))
	assert.Equal(t, "2025-02-01", months.AdvanceDate("whenever", feb))
}
