package derived_test

import (
	"testing"

	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func sampleState() *domain.State {
	st := domain.NewState()
	st.Accounts = []domain.Account{
		{ID: "salary", Name: "Salário", Balance: 5000},
		{ID: "bonus", Name: "Bônus", Balance: 1000, Month: "JANEIRO", Year: "2025"},
		{ID: "old", Name: "Freela", Balance: 700, Month: "DEZEMBRO", Year: "2024"},
	}
	st.Transactions = []domain.Transaction{
		{ID: "1", Name: "Aluguel", Amount: 1500, Date: "05 Jan", Type: "housing", PaymentMethod: "pix", Paid: true},
		{ID: "2", Name: "Internet", Amount: 99.9, Date: "2025-01-10", Type: "bills", PaymentMethod: "card"},
		{ID: "3", Name: "Academia", Amount: 120.1, Date: "15 Jan", Type: "bills", PaymentMethod: "card", Month: "FEVEREIRO", Year: "2025"},
		{ID: "4", Name: "Ceia", Amount: 300, Date: "2024-12-24", Type: "food"},
	}
	return &st
}

func TestFilters(t *testing.T) {
	st := sampleState()
	jan := domain.Partition{Month: "JANEIRO", Year: "2025"}

	txs := derived.TransactionsIn(st.Transactions, jan, fixedNow)
	assert.Len(t, txs, 2)
	assert.Equal(t, "1", txs[0].ID)
	assert.Equal(t, "2", txs[1].ID)

	accounts := derived.AccountsIn(st.Accounts, jan)
	assert.Len(t, accounts, 2)
}

func TestProfitBalance(t *testing.T) {
	st := sampleState()
	jan := domain.Partition{Month: "JANEIRO", Year: "2025"}
	assert.InDelta(t, 6000-1599.9, derived.ProfitBalance(st.Accounts, st.Transactions, jan, fixedNow), 0.001)

	dec := domain.Partition{Month: "DEZEMBRO", Year: "2024"}
	assert.InDelta(t, 5000+700-300, derived.ProfitBalance(st.Accounts, st.Transactions, dec, fixedNow), 0.001)
}

func TestSummarize(t *testing.T) {
	st := sampleState()
	s := derived.Summarize(st, domain.Partition{Month: "JANEIRO", Year: "2025"}, fixedNow)

	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 6000, s.Income, 0.001)
	assert.InDelta(t, 1599.9, s.Expenses, 0.001)
	assert.InDelta(t, 1500, s.Paid, 0.001)
	assert.InDelta(t, 99.9, s.Pending, 0.001)
	assert.InDelta(t, 4400.1, s.Balance, 0.001)
	assert.InDelta(t, 99.9, s.ByCategory["bills"], 0.001)
	assert.InDelta(t, 1500, s.ByMethod["pix"], 0.001)
}

func TestMonthlyIncome(t *testing.T) {
	cdb := domain.Investment{Type: domain.InvestmentFixedIncome, Amount: 12000, YieldRate: 100}
	fii := domain.Investment{Type: domain.InvestmentRealEstateFund, Amount: 1000, YieldRate: 0.9}

	assert.InDelta(t, 112.5, derived.MonthlyIncome(cdb, 11.25), 0.001)
	assert.InDelta(t, 9, derived.MonthlyIncome(fii, 11.25), 0.001)
	assert.InDelta(t, 121.5, derived.PortfolioIncome([]domain.Investment{cdb, fii}, 11.25), 0.001)
	assert.Zero(t, derived.MonthlyIncome(domain.Investment{Type: "crypto", Amount: 10}, 11.25))
}
