package ledger

import (
	"fmt"
	"strings"

	"github.com/amirasaad/finsync/pkg/derived"
	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/domain/money"
	"github.com/amirasaad/finsync/pkg/months"
)

// TransactionInput is the editable part of a transaction.
type TransactionInput struct {
	Name          string  `json:"name" validate:"required,max=120"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date" validate:"required,max=32"`
	Type          string  `json:"type" validate:"max=64"`
	PaymentMethod string  `json:"paymentMethod" validate:"max=64"`
	Paid          bool    `json:"paid"`
}

func (in TransactionInput) check() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Date) == "" {
		return fmt.Errorf("transaction needs a name and a date: %w", domain.ErrValidation)
	}
	return nil
}

// resolve returns the partition of tx, falling back to fallback when the
// date cannot be read.
func (s *Service) resolve(st *domain.State, tx domain.Transaction, fallback domain.Partition) domain.Partition {
	if p, ok := derived.ResolveTransaction(tx, s.contextYear(st), s.now()); ok {
		return p
	}
	return fallback
}

// AddTransaction creates a transaction, stamps it with the partition its date
// resolves to and adds its amount to that month's total.
func (s *Service) AddTransaction(in TransactionInput) (domain.Transaction, error) {
	log := s.logger.With("context", "AddTransaction")
	if err := in.check(); err != nil {
		return domain.Transaction{}, err
	}
	var created domain.Transaction
	err := s.state.Update(func(st *domain.State) error {
		active, ok := st.ActiveMonth()
		if !ok {
			return months.ErrNoActiveMonth
		}
		tx := domain.Transaction{
			ID:            domain.NewID(),
			Name:          strings.TrimSpace(in.Name),
			Amount:        money.Round(in.Amount),
			Date:          strings.TrimSpace(in.Date),
			Type:          in.Type,
			PaymentMethod: in.PaymentMethod,
			Paid:          in.Paid,
		}
		p := s.resolve(st, tx, active.Partition())
		tx.Month, tx.Year = p.Month, p.Year
		s.months.Ensure(st, p)
		st.Transactions = append(st.Transactions, tx)
		months.AdjustTotal(st, p, tx.Amount)
		created = tx
		return nil
	})
	if err != nil {
		log.Error("AddTransaction failed", "error", err)
		return domain.Transaction{}, err
	}
	log.Info("transaction added", "id", created.ID, "month", created.Month, "year", created.Year)
	return created, nil
}

// UpdateTransaction replaces the editable fields of a transaction. The amount
// delta goes to the owning month; when the date moves the transaction to
// another month the whole amount moves with it.
func (s *Service) UpdateTransaction(id string, in TransactionInput) (domain.Transaction, error) {
	if err := in.check(); err != nil {
		return domain.Transaction{}, err
	}
	var updated domain.Transaction
	err := s.state.Update(func(st *domain.State) error {
		i := st.TransactionIndex(id)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		old := st.Transactions[i]
		oldP := s.resolve(st, old, domain.PartitionOf(s.now()))

		tx := old
		tx.Name = strings.TrimSpace(in.Name)
		tx.Amount = money.Round(in.Amount)
		tx.Type = in.Type
		tx.PaymentMethod = in.PaymentMethod
		tx.Paid = in.Paid
		newP := oldP
		if date := strings.TrimSpace(in.Date); date != old.Date {
			tx.Date = date
			if p, ok := derived.ResolveDate(date, oldP.Year, s.now()); ok {
				newP = p
			}
		}
		tx.Month, tx.Year = newP.Month, newP.Year
		st.Transactions[i] = tx

		if newP == oldP {
			months.AdjustTotal(st, oldP, money.Sub(tx.Amount, old.Amount))
		} else {
			months.AdjustTotal(st, oldP, -old.Amount)
			s.months.Ensure(st, newP)
			months.AdjustTotal(st, newP, tx.Amount)
		}
		updated = tx
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return updated, nil
}

// TogglePaid flips the paid flag. Totals are unaffected.
func (s *Service) TogglePaid(id string) (domain.Transaction, error) {
	var toggled domain.Transaction
	err := s.state.Update(func(st *domain.State) error {
		i := st.TransactionIndex(id)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		st.Transactions[i].Paid = !st.Transactions[i].Paid
		toggled = st.Transactions[i]
		return nil
	})
	return toggled, err
}

// DeleteTransaction removes a transaction and subtracts it from its month.
func (s *Service) DeleteTransaction(id string) error {
	return s.state.Update(func(st *domain.State) error {
		i := st.TransactionIndex(id)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		tx := st.Transactions[i]
		if p, ok := derived.ResolveTransaction(tx, s.contextYear(st), s.now()); ok {
			months.AdjustTotal(st, p, -tx.Amount)
		}
		st.Transactions = remove(st.Transactions, i)
		return nil
	})
}
