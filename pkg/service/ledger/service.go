// Package ledger holds the entity handlers: every user-facing mutation of
// transactions, accounts, investments, installment plans, notifications,
// settings and months goes through here and then through the orchestrator.
package ledger

import (
	"log/slog"
	"time"

	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/months"
)

// Updater applies a mutation to the session state atomically.
type Updater interface {
	Update(fn func(*domain.State) error) error
	Snapshot() domain.State
}

type Service struct {
	state  Updater
	months *months.Manager
	now    func() time.Time
	logger *slog.Logger
}

// New creates the ledger service. A nil clock means time.Now.
func New(state Updater, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		state:  state,
		months: months.NewManager(now),
		now:    now,
		logger: logger.With("component", "ledger"),
	}
}

// Snapshot returns a copy of the whole session state.
func (s *Service) Snapshot() domain.State {
	return s.state.Snapshot()
}

// View is the active month as shown on the dashboard.
type View struct {
	Month           domain.MonthSummary  `json:"month"`
	Transactions    []domain.Transaction `json:"transactions"`
	Accounts        []domain.Account     `json:"accounts"`
	Summary         derived.Summary      `json:"summary"`
	ProfitBalance   float64              `json:"profitBalance"`
	PortfolioIncome float64              `json:"portfolioIncome"`
}

// ActiveView filters the state down to the active month.
func (s *Service) ActiveView() (View, error) {
	st := s.state.Snapshot()
	active, ok := st.ActiveMonth()
	if !ok {
		return View{}, months.ErrNoActiveMonth
	}
	p := active.Partition()
	now := s.now()
	return View{
		Month:           *active,
		Transactions:    derived.TransactionsIn(st.Transactions, p, now),
		Accounts:        derived.AccountsIn(st.Accounts, p),
		Summary:         derived.Summarize(&st, p, now),
		ProfitBalance:   derived.ProfitBalance(st.Accounts, st.Transactions, p, now),
		PortfolioIncome: derived.PortfolioIncome(st.Investments, st.CDIRate),
	}, nil
}

// Summary returns the analytics of the active month.
func (s *Service) Summary() (derived.Summary, error) {
	v, err := s.ActiveView()
	if err != nil {
		return derived.Summary{}, err
	}
	return v.Summary, nil
}

// contextYear is the year short dates are resolved against: the active
// month's, else the current one.
func (s *Service) contextYear(st *domain.State) string {
	if active, ok := st.ActiveMonth(); ok {
		return active.Year
	}
	return domain.PartitionOf(s.now()).Year
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i := range items {
		if idOf(items[i]) == id {
			return i
		}
	}
	return -1
}

func remove[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
