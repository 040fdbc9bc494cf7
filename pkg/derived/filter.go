package derived

import (
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/domain/money"
)

// TransactionsIn returns the transactions whose resolved partition is p.
func TransactionsIn(txs []domain.Transaction, p domain.Partition, now time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if got, ok := ResolveTransaction(tx, p.Year, now); ok && got == p {
			out = append(out, tx)
		}
	}
	return out
}

// AccountVisible reports whether an account shows in month p: unlabelled
// accounts are global.
func AccountVisible(a domain.Account, p domain.Partition) bool {
	label, ok := a.Label()
	return !ok || label == p
}

// AccountsIn returns the accounts visible in p.
func AccountsIn(accounts []domain.Account, p domain.Partition) []domain.Account {
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if AccountVisible(a, p) {
			out = append(out, a)
		}
	}
	return out
}

// ProfitBalance is the visible account balances minus the month's
// transaction amounts.
func ProfitBalance(accounts []domain.Account, txs []domain.Transaction, p domain.Partition, now time.Time) float64 {
	income := money.Sum(AccountsIn(accounts, p), func(a domain.Account) float64 { return a.Balance })
	spent := money.Sum(TransactionsIn(txs, p, now), func(t domain.Transaction) float64 { return t.Amount })
	return money.Sub(income, spent)
}
