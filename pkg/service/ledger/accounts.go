package ledger

import (
	"fmt"
	"strings"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/domain/money"
	"github.com/amirasaad/finsync/pkg/months"
)

// AccountInput is the editable part of an income source. Global accounts are
// shown in every month.
type AccountInput struct {
	Name    string  `json:"name" validate:"required,max=120"`
	Balance float64 `json:"balance"`
	Color   string  `json:"color" validate:"max=32"`
	Global  bool    `json:"global"`
}

// AddAccount creates an account labelled with the active month, or a global
// one.
func (s *Service) AddAccount(in AccountInput) (domain.Account, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Account{}, fmt.Errorf("account needs a name: %w", domain.ErrValidation)
	}
	var created domain.Account
	err := s.state.Update(func(st *domain.State) error {
		a := domain.Account{
			ID:      domain.NewID(),
			Name:    strings.TrimSpace(in.Name),
			Balance: money.Round(in.Balance),
			Color:   in.Color,
		}
		if !in.Global {
			active, ok := st.ActiveMonth()
			if !ok {
				return months.ErrNoActiveMonth
			}
			a.Month, a.Year = active.Month, active.Year
		}
		st.Accounts = append(st.Accounts, a)
		created = a
		return nil
	})
	return created, err
}

// UpdateAccount edits an account. Turning a global account into a monthly one
// labels it with the active month.
func (s *Service) UpdateAccount(id string, in AccountInput) (domain.Account, error) {
	var updated domain.Account
	err := s.state.Update(func(st *domain.State) error {
		i := st.AccountIndex(id)
		if i < 0 {
			return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		a := st.Accounts[i]
		if name := strings.TrimSpace(in.Name); name != "" {
			a.Name = name
		}
		a.Balance = money.Round(in.Balance)
		a.Color = in.Color
		_, labelled := a.Label()
		switch {
		case in.Global:
			a.Month, a.Year = "", ""
		case !labelled:
			active, ok := st.ActiveMonth()
			if !ok {
				return months.ErrNoActiveMonth
			}
			a.Month, a.Year = active.Month, active.Year
		}
		st.Accounts[i] = a
		updated = a
		return nil
	})
	return updated, err
}

func (s *Service) DeleteAccount(id string) error {
	return s.state.Update(func(st *domain.State) error {
		i := st.AccountIndex(id)
		if i < 0 {
			return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		st.Accounts = remove(st.Accounts, i)
		return nil
	})
}

// InvestmentInput is the editable part of an investment.
type InvestmentInput struct {
	Name        string                `json:"name" validate:"required,max=120"`
	Institution string                `json:"institution" validate:"max=120"`
	Type        domain.InvestmentType `json:"type" validate:"required,oneof=fixed_income real_estate_fund"`
	Amount      float64               `json:"amount" validate:"gte=0"`
	Quantity    *float64              `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	YieldRate   float64               `json:"yieldRate" validate:"gte=0"`
}

func (in InvestmentInput) toDomain(id string) (domain.Investment, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Investment{}, fmt.Errorf("investment needs a name: %w", domain.ErrValidation)
	}
	switch in.Type {
	case domain.InvestmentFixedIncome, domain.InvestmentRealEstateFund:
	default:
		return domain.Investment{}, fmt.Errorf("unknown investment type %q: %w", in.Type, domain.ErrValidation)
	}
	return domain.Investment{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Institution: in.Institution,
		Type:        in.Type,
		Amount:      money.Round(in.Amount),
		Quantity:    in.Quantity,
		YieldRate:   in.YieldRate,
	}, nil
}

func investmentID(v domain.Investment) string { return v.ID }

func (s *Service) AddInvestment(in InvestmentInput) (domain.Investment, error) {
	inv, err := in.toDomain(domain.NewID())
	if err != nil {
		return domain.Investment{}, err
	}
	err = s.state.Update(func(st *domain.State) error {
		st.Investments = append(st.Investments, inv)
		return nil
	})
	return inv, err
}

func (s *Service) UpdateInvestment(id string, in InvestmentInput) (domain.Investment, error) {
	inv, err := in.toDomain(id)
	if err != nil {
		return domain.Investment{}, err
	}
	err = s.state.Update(func(st *domain.State) error {
		i := indexOf(st.Investments, id, investmentID)
		if i < 0 {
			return fmt.Errorf("investment %s: %w", id, domain.ErrNotFound)
		}
		st.Investments[i] = inv
		return nil
	})
	return inv, err
}

func (s *Service) DeleteInvestment(id string) error {
	return s.state.Update(func(st *domain.State) error {
		i := indexOf(st.Investments, id, investmentID)
		if i < 0 {
			return fmt.Errorf("investment %s: %w", id, domain.ErrNotFound)
		}
		st.Investments = remove(st.Investments, i)
		return nil
	})
}
