package domain

import "sort"

// State is the in-memory working set of one session.
type State struct {
	Transactions   []Transaction         `json:"transactions"`
	Accounts       []Account             `json:"accounts"`
	Investments    []Investment          `json:"investments"`
	LongTerm       []LongTermTransaction `json:"longTerm"`
	Notifications  []AppNotification     `json:"notifications"`
	Months         []MonthSummary        `json:"months"`
	Profile        UserProfile           `json:"profile"`
	Theme          AppTheme              `json:"theme"`
	NotepadContent string                `json:"notepadContent"`
	CDIRate        float64               `json:"cdiRate"`
	ActiveMonthID  string                `json:"activeMonthId"`
}

// NewState returns an empty state with non-nil collections and default rates.
func NewState() State {
	return State{
		Transactions:  []Transaction{},
		Accounts:      []Account{},
		Investments:   []Investment{},
		LongTerm:      []LongTermTransaction{},
		Notifications: []AppNotification{},
		Months:        []MonthSummary{},
		CDIRate:       DefaultCDIRate,
	}
}

// ActiveMonth returns the selected month summary.
func (s *State) ActiveMonth() (*MonthSummary, bool) {
	return s.MonthByID(s.ActiveMonthID)
}

func (s *State) MonthByID(id string) (*MonthSummary, bool) {
	for i := range s.Months {
		if s.Months[i].ID == id {
			return &s.Months[i], true
		}
	}
	return nil, false
}

// MonthFor returns the summary of a partition.
func (s *State) MonthFor(p Partition) (*MonthSummary, bool) {
	for i := range s.Months {
		if s.Months[i].Month == p.Month && s.Months[i].Year == p.Year {
			return &s.Months[i], true
		}
	}
	return nil, false
}

// SortMonths orders the month list chronologically.
func (s *State) SortMonths() {
	sort.SliceStable(s.Months, func(i, j int) bool {
		return s.Months[i].Partition().Before(s.Months[j].Partition())
	})
}

func (s *State) TransactionIndex(id string) int {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) AccountIndex(id string) int {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}
