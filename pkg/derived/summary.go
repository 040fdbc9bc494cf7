package derived

import (
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/domain/money"
)

// Summary aggregates one month partition for the analytics views.
type Summary struct {
	Partition  domain.Partition   `json:"partition"`
	Income     float64            `json:"income"`
	Expenses   float64            `json:"expenses"`
	Paid       float64            `json:"paid"`
	Pending    float64            `json:"pending"`
	Balance    float64            `json:"balance"`
	ByCategory map[string]float64 `json:"byCategory"`
	ByMethod   map[string]float64 `json:"byPaymentMethod"`
	Count      int                `json:"count"`
}

// Summarize computes the Summary of partition p.
func Summarize(st *domain.State, p domain.Partition, now time.Time) Summary {
	txs := TransactionsIn(st.Transactions, p, now)
	s := Summary{
		Partition:  p,
		Income:     money.Sum(AccountsIn(st.Accounts, p), func(a domain.Account) float64 { return a.Balance }),
		ByCategory: make(map[string]float64),
		ByMethod:   make(map[string]float64),
		Count:      len(txs),
	}
	for _, tx := range txs {
		s.Expenses = money.Add(s.Expenses, tx.Amount)
		if tx.Paid {
			s.Paid = money.Add(s.Paid, tx.Amount)
		} else {
			s.Pending = money.Add(s.Pending, tx.Amount)
		}
		s.ByCategory[tx.Type] = money.Add(s.ByCategory[tx.Type], tx.Amount)
		s.ByMethod[tx.PaymentMethod] = money.Add(s.ByMethod[tx.PaymentMethod], tx.Amount)
	}
	s.Balance = money.Sub(s.Income, s.Expenses)
	return s
}

// MonthlyIncome projects the monthly return of an investment. Fixed income
// yields YieldRate percent of the annual CDI rate; real-estate funds pay
// YieldRate percent of the amount every month.
func MonthlyIncome(inv domain.Investment, cdiRate float64) float64 {
	switch inv.Type {
	case domain.InvestmentFixedIncome:
		annual := money.Percent(inv.Amount, inv.YieldRate*cdiRate/100)
		return money.Round(annual / 12)
	case domain.InvestmentRealEstateFund:
		return money.Percent(inv.Amount, inv.YieldRate)
	default:
		return 0
	}
}

// PortfolioIncome sums MonthlyIncome over investments.
func PortfolioIncome(invs []domain.Investment, cdiRate float64) float64 {
	return money.Sum(invs, func(i domain.Investment) float64 { return MonthlyIncome(i, cdiRate) })
}
