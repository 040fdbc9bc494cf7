package domain

import "encoding/json"

// Transaction is a bill, subscription or expense line.
// Month and Year are an optional explicit partition label; when absent the
// partition is resolved from Date.
type Transaction struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	PaymentMethod string  `json:"paymentMethod"`
	Paid          bool    `json:"paid"`
	Month         string  `json:"month,omitempty"`
	Year          string  `json:"year,omitempty"`
}

// Label returns the explicit partition label, if both parts are set.
func (t Transaction) Label() (Partition, bool) {
	if t.Month == "" || t.Year == "" {
		return Partition{}, false
	}
	return Partition{Month: t.Month, Year: t.Year}, true
}

// Account is an income source. An account without a label is global and is
// visible in every month.
type Account struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Color   string  `json:"color"`
	Month   string  `json:"month,omitempty"`
	Year    string  `json:"year,omitempty"`
}

// Label returns the explicit partition label, if both parts are set.
func (a Account) Label() (Partition, bool) {
	if a.Month == "" || a.Year == "" {
		return Partition{}, false
	}
	return Partition{Month: a.Month, Year: a.Year}, true
}

// MonthSummary is one month partition with the cached sum of its transactions.
type MonthSummary struct {
	ID    string  `json:"id"`
	Month string  `json:"month"`
	Year  string  `json:"year"`
	Total float64 `json:"total"`
}

func (m MonthSummary) Partition() Partition {
	return Partition{Month: m.Month, Year: m.Year}
}

// LongTermTransaction is an installment plan. History overrides the amount of
// individual installments (keyed by zero-based index); every other installment
// is worth MonthlyAmount.
type LongTermTransaction struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	TotalAmount       float64         `json:"totalAmount"`
	InstallmentsCount int             `json:"installmentsCount"`
	StartDate         string          `json:"startDate"`
	InstallmentsPaid  int             `json:"installmentsPaid"`
	History           map[int]float64 `json:"history,omitempty"`
	MonthlyAmount     float64         `json:"monthlyAmount"`
}

// InvestmentType selects how YieldRate is interpreted.
type InvestmentType string

const (
	// InvestmentFixedIncome yields YieldRate percent of the CDI rate per year.
	InvestmentFixedIncome InvestmentType = "fixed_income"
	// InvestmentRealEstateFund pays YieldRate percent of the amount per month.
	InvestmentRealEstateFund InvestmentType = "real_estate_fund"
)

type Investment struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Institution string         `json:"institution"`
	Type        InvestmentType `json:"type"`
	Amount      float64        `json:"amount"`
	Quantity    *float64       `json:"quantity,omitempty"`
	YieldRate   float64        `json:"yieldRate"`
}

// NotificationKindDueBill marks notifications raised by the due-today scan.
const NotificationKindDueBill = "due_bill"

type AppNotification struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Read    bool   `json:"read"`
	Kind    string `json:"kind"`
}

type UserProfile struct {
	Name               string  `json:"name"`
	Subtitle           string  `json:"subtitle"`
	AvatarURL          string  `json:"avatarUrl"`
	IsPro              *bool   `json:"isPro,omitempty"`
	SubscriptionExpiry *string `json:"subscriptionExpiry,omitempty"`
}

type AppTheme struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
	Dark    bool   `json:"dark"`
}

// DefaultCDIRate is used whenever a rate was never set.
const DefaultCDIRate = 11.25

// UserRecord is the full per-user record held by the remote store.
type UserRecord struct {
	Email            string                `json:"email"`
	Profile          UserProfile           `json:"profile"`
	Theme            AppTheme              `json:"theme"`
	Months           []MonthSummary        `json:"months"`
	CDIRate          float64               `json:"cdiRate"`
	NotepadContent   string                `json:"notepadContent"`
	PushSubscription json.RawMessage       `json:"pushSubscription,omitempty"`
	Transactions     []Transaction         `json:"transactions"`
	Accounts         []Account             `json:"accounts"`
	Investments      []Investment          `json:"investments"`
	Notifications    []AppNotification     `json:"notifications"`
	LongTerm         []LongTermTransaction `json:"longTerm"`
}
