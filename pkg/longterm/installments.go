// Package longterm keeps installment plans consistent: the plan total is
// always the sum of its installments, where paid installments keep the amount
// they were paid at and the rest are worth the current monthly amount.
package longterm

import (
	"fmt"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/domain/money"
)

var (
	ErrFullyPaid   = fmt.Errorf("all installments already paid: %w", domain.ErrValidation)
	ErrNothingPaid = fmt.Errorf("no installment paid yet: %w", domain.ErrValidation)
	ErrInvalidPlan = fmt.Errorf("invalid installment plan: %w", domain.ErrValidation)
)

// New builds a plan of count installments of monthly each.
func New(title string, count int, monthly float64, startDate string) (domain.LongTermTransaction, error) {
	if count <= 0 || monthly < 0 || title == "" {
		return domain.LongTermTransaction{}, ErrInvalidPlan
	}
	lt := domain.LongTermTransaction{
		ID:                domain.NewID(),
		Title:             title,
		InstallmentsCount: count,
		StartDate:         startDate,
		MonthlyAmount:     money.Round(monthly),
		History:           map[int]float64{},
	}
	Recalculate(&lt)
	return lt, nil
}

// InstallmentAmount returns the amount of installment i.
func InstallmentAmount(lt domain.LongTermTransaction, i int) float64 {
	if v, ok := lt.History[i]; ok {
		return v
	}
	return lt.MonthlyAmount
}

// Recalculate restores TotalAmount from the installments.
func Recalculate(lt *domain.LongTermTransaction) {
	total := 0.0
	for i := 0; i < lt.InstallmentsCount; i++ {
		total = money.Add(total, InstallmentAmount(*lt, i))
	}
	lt.TotalAmount = total
}

// SetMonthlyAmount changes the rate of every installment not yet overridden.
func SetMonthlyAmount(lt *domain.LongTermTransaction, monthly float64) error {
	if monthly < 0 {
		return ErrInvalidPlan
	}
	lt.MonthlyAmount = money.Round(monthly)
	Recalculate(lt)
	return nil
}

// PayInstallment marks the next installment paid and pins its amount at the
// current monthly rate.
func PayInstallment(lt *domain.LongTermTransaction) error {
	if lt.InstallmentsPaid >= lt.InstallmentsCount {
		return ErrFullyPaid
	}
	if lt.History == nil {
		lt.History = map[int]float64{}
	}
	if _, ok := lt.History[lt.InstallmentsPaid]; !ok {
		lt.History[lt.InstallmentsPaid] = lt.MonthlyAmount
	}
	lt.InstallmentsPaid++
	Recalculate(lt)
	return nil
}

// UndoInstallment reverts the last paid installment to the current rate.
func UndoInstallment(lt *domain.LongTermTransaction) error {
	if lt.InstallmentsPaid == 0 {
		return ErrNothingPaid
	}
	lt.InstallmentsPaid--
	delete(lt.History, lt.InstallmentsPaid)
	Recalculate(lt)
	return nil
}

// Paid is the amount already paid.
func Paid(lt domain.LongTermTransaction) float64 {
	total := 0.0
	for i := 0; i < lt.InstallmentsPaid && i < lt.InstallmentsCount; i++ {
		total = money.Add(total, InstallmentAmount(lt, i))
	}
	return total
}

// Remaining is the amount still owed.
func Remaining(lt domain.LongTermTransaction) float64 {
	return money.Sub(lt.TotalAmount, Paid(lt))
}
