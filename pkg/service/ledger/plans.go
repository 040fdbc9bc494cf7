package ledger

import (
	"fmt"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/longterm"
)

// PlanInput describes a new installment plan.
type PlanInput struct {
	Title             string  `json:"title" validate:"required,max=120"`
	InstallmentsCount int     `json:"installmentsCount" validate:"required,gt=0,lte=600"`
	MonthlyAmount     float64 `json:"monthlyAmount" validate:"gte=0"`
	StartDate         string  `json:"startDate" validate:"max=32"`
}

func planID(lt domain.LongTermTransaction) string { return lt.ID }

func (s *Service) AddPlan(in PlanInput) (domain.LongTermTransaction, error) {
	lt, err := longterm.New(in.Title, in.InstallmentsCount, in.MonthlyAmount, in.StartDate)
	if err != nil {
		return domain.LongTermTransaction{}, err
	}
	err = s.state.Update(func(st *domain.State) error {
		st.LongTerm = append(st.LongTerm, lt)
		return nil
	})
	return lt, err
}

// editPlan applies fn to the plan with the given id.
func (s *Service) editPlan(id string, fn func(*domain.LongTermTransaction) error) (domain.LongTermTransaction, error) {
	var out domain.LongTermTransaction
	err := s.state.Update(func(st *domain.State) error {
		i := indexOf(st.LongTerm, id, planID)
		if i < 0 {
			return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
		}
		if err := fn(&st.LongTerm[i]); err != nil {
			return err
		}
		out = st.LongTerm[i]
		return nil
	})
	return out, err
}

func (s *Service) PayInstallment(id string) (domain.LongTermTransaction, error) {
	return s.editPlan(id, longterm.PayInstallment)
}

func (s *Service) UndoInstallment(id string) (domain.LongTermTransaction, error) {
	return s.editPlan(id, longterm.UndoInstallment)
}

func (s *Service) SetMonthlyAmount(id string, monthly float64) (domain.LongTermTransaction, error) {
	return s.editPlan(id, func(lt *domain.LongTermTransaction) error {
		return longterm.SetMonthlyAmount(lt, monthly)
	})
}

func (s *Service) DeletePlan(id string) error {
	return s.state.Update(func(st *domain.State) error {
		i := indexOf(st.LongTerm, id, planID)
		if i < 0 {
			return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
		}
		st.LongTerm = remove(st.LongTerm, i)
		return nil
	})
}
