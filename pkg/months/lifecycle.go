// Package months manages month partitions: rollover into the next month,
// selection, deletion with cascade, and the cached per-month totals.
package months

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/domain/money"
)

var (
	// ErrMonthExists is returned when the target partition already has a summary.
	ErrMonthExists = fmt.Errorf("month already exists: %w", domain.ErrAlreadyExists)
	// ErrLastMonth is returned when deleting the only remaining month.
	ErrLastMonth = errors.New("cannot delete the only month")
	// ErrNoActiveMonth is returned when no month is selected.
	ErrNoActiveMonth = fmt.Errorf("no active month: %w", domain.ErrNotFound)
)

// Manager applies month operations to a state. It never talks to storage;
// the orchestrator notices the resulting state changes.
type Manager struct {
	now   func() time.Time
	newID func() string
}

// NewManager creates a Manager. A nil clock means time.Now.
func NewManager(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{now: now, newID: domain.NewID}
}

// Ensure returns the summary for p, creating an empty one when missing.
func (m *Manager) Ensure(st *domain.State, p domain.Partition) *domain.MonthSummary {
	if ms, ok := st.MonthFor(p); ok {
		return ms
	}
	st.Months = append(st.Months, domain.MonthSummary{ID: m.newID(), Month: p.Month, Year: p.Year})
	st.SortMonths()
	ms, _ := st.MonthFor(p)
	if st.ActiveMonthID == "" {
		st.ActiveMonthID = ms.ID
	}
	return ms
}

// DuplicateNext rolls the active month forward: every transaction and account
// shown in the active month is cloned into the next calendar month, and the
// new summary becomes active. The state is left untouched on error.
func (m *Manager) DuplicateNext(st *domain.State) (domain.MonthSummary, error) {
	active, ok := st.ActiveMonth()
	if !ok {
		return domain.MonthSummary{}, ErrNoActiveMonth
	}
	from := active.Partition()
	to := from.Next()
	if _, exists := st.MonthFor(to); exists {
		return domain.MonthSummary{}, fmt.Errorf("%s: %w", to, ErrMonthExists)
	}

	now := m.now()
	txs := derived.TransactionsIn(st.Transactions, from, now)
	clones := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		tx.ID = m.newID()
		tx.Paid = false
		tx.Month, tx.Year = to.Month, to.Year
		tx.Date = AdvanceDate(tx.Date, to)
		clones = append(clones, tx)
	}
	for _, a := range derived.AccountsIn(st.Accounts, from) {
		if _, labelled := a.Label(); !labelled {
			// global accounts already show in every month
			continue
		}
		a.ID = m.newID()
		a.Month, a.Year = to.Month, to.Year
		st.Accounts = append(st.Accounts, a)
	}
	st.Transactions = append(st.Transactions, clones...)

	summary := domain.MonthSummary{
		ID:    m.newID(),
		Month: to.Month,
		Year:  to.Year,
		Total: money.Sum(clones, func(t domain.Transaction) float64 { return t.Amount }),
	}
	st.Months = append(st.Months, summary)
	st.SortMonths()
	st.ActiveMonthID = summary.ID
	return summary, nil
}

// Select switches the active month.
func (m *Manager) Select(st *domain.State, id string) error {
	if _, ok := st.MonthByID(id); !ok {
		return fmt.Errorf("month %s: %w", id, domain.ErrNotFound)
	}
	st.ActiveMonthID = id
	return nil
}

// Delete removes a month and every transaction and account resolved into it.
// When the active month is deleted the chronologically last month becomes
// active.
func (m *Manager) Delete(st *domain.State, id string) error {
	target, ok := st.MonthByID(id)
	if !ok {
		return fmt.Errorf("month %s: %w", id, domain.ErrNotFound)
	}
	if len(st.Months) <= 1 {
		return ErrLastMonth
	}
	p := target.Partition()
	now := m.now()

	txs := st.Transactions[:0:0]
	for _, tx := range st.Transactions {
		if got, ok := derived.ResolveTransaction(tx, p.Year, now); ok && got == p {
			continue
		}
		txs = append(txs, tx)
	}
	accounts := st.Accounts[:0:0]
	for _, a := range st.Accounts {
		if label, ok := a.Label(); ok && label == p {
			continue
		}
		accounts = append(accounts, a)
	}
	remaining := make([]domain.MonthSummary, 0, len(st.Months)-1)
	for _, ms := range st.Months {
		if ms.ID != id {
			remaining = append(remaining, ms)
		}
	}

	st.Transactions = txs
	st.Accounts = accounts
	st.Months = remaining
	st.SortMonths()
	if st.ActiveMonthID == id {
		st.ActiveMonthID = st.Months[len(st.Months)-1].ID
	}
	return nil
}

// AdjustTotal adds delta to the cached total of partition p. Missing months
// are ignored.
func AdjustTotal(st *domain.State, p domain.Partition, delta float64) {
	if ms, ok := st.MonthFor(p); ok {
		ms.Total = money.Add(ms.Total, delta)
	}
}

// Recompute rebuilds a month's total from its transactions. Only used when a
// total is known to be stale.
func Recompute(st *domain.State, p domain.Partition, now time.Time) float64 {
	total := money.Sum(derived.TransactionsIn(st.Transactions, p, now), func(t domain.Transaction) float64 { return t.Amount })
	if ms, ok := st.MonthFor(p); ok {
		ms.Total = total
	}
	return total
}

// AdvanceDate moves a transaction date string into partition to. Short dates
// keep their day, ISO dates advance one month with day overflow normalized,
// and "today" dates become the first of the new month.
func AdvanceDate(date string, to domain.Partition) string {
	idx := domain.MonthIndex(to.Month)
	year, _ := strconv.Atoi(to.Year)

	switch derived.Classify(date) {
	case derived.EncodingShort:
		fields := strings.Fields(date)
		fields[1] = domain.MonthCodes[idx]
		return strings.Join(fields, " ")
	case derived.EncodingISO:
		trimmed := strings.TrimSpace(date)
		t, err := time.Parse(time.DateOnly, trimmed[:10])
		if err != nil {
			break
		}
		return t.AddDate(0, 1, 0).Format(time.DateOnly) + trimmed[10:]
	}
	return time.Date(year, time.Month(idx+1), 1, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}
