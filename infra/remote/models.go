package remote

import (
	"encoding/json"
	"time"

	"github.com/amirasaad/finsync/pkg/domain"
)

// User is the top-level row of a user record. Object-valued fields are stored
// as JSON text so the same schema works on postgres and sqlite.
type User struct {
	Email            string   `gorm:"primaryKey;size:255"`
	Profile          string   `gorm:"type:text;not null"`
	Theme            string   `gorm:"type:text"`
	Months           string   `gorm:"type:text"`
	CDIRate          *float64 `gorm:"column:cdi_rate"`
	NotepadContent   *string  `gorm:"type:text"`
	PushSubscription string   `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Transaction is one row of the transactions child collection.
type Transaction struct {
	UserEmail     string `gorm:"primaryKey;size:255"`
	ID            string `gorm:"primaryKey;size:64"`
	Ordinal       int    `gorm:"not null"`
	Name          string
	Amount        float64
	Date          string `gorm:"size:32"`
	Type          string `gorm:"size:64"`
	PaymentMethod string `gorm:"size:64"`
	Paid          bool
	Month         string `gorm:"size:16"`
	Year          string `gorm:"size:8"`
}

func (Transaction) TableName() string { return "transactions" }

// Account is one row of the accounts child collection.
type Account struct {
	UserEmail string `gorm:"primaryKey;size:255"`
	ID        string `gorm:"primaryKey;size:64"`
	Ordinal   int    `gorm:"not null"`
	Name      string
	Balance   float64
	Color     string `gorm:"size:32"`
	Month     string `gorm:"size:16"`
	Year      string `gorm:"size:8"`
}

func (Account) TableName() string { return "accounts" }

// Investment is one row of the investments child collection.
type Investment struct {
	UserEmail   string `gorm:"primaryKey;size:255"`
	ID          string `gorm:"primaryKey;size:64"`
	Ordinal     int    `gorm:"not null"`
	Name        string
	Institution string
	Type        string `gorm:"size:32"`
	Amount      float64
	Quantity    *float64
	YieldRate   float64
}

func (Investment) TableName() string { return "investments" }

// Notification is one row of the notifications child collection.
type Notification struct {
	UserEmail string `gorm:"primaryKey;size:255"`
	ID        string `gorm:"primaryKey;size:64"`
	Ordinal   int    `gorm:"not null"`
	Title     string
	Message   string
	Date      string `gorm:"size:32"`
	Read      bool
	Kind      string `gorm:"size:32"`
}

func (Notification) TableName() string { return "notifications" }

// LongTerm is one row of the long_term child collection.
type LongTerm struct {
	UserEmail         string `gorm:"primaryKey;size:255"`
	ID                string `gorm:"primaryKey;size:64"`
	Ordinal           int    `gorm:"not null"`
	Title             string
	TotalAmount       float64
	InstallmentsCount int
	StartDate         string `gorm:"size:32"`
	InstallmentsPaid  int
	History           string `gorm:"type:text"`
	MonthlyAmount     float64
}

func (LongTerm) TableName() string { return "long_term" }

// Models lists every table of the remote schema.
func Models() []any {
	return []any{&User{}, &Transaction{}, &Account{}, &Investment{}, &Notification{}, &LongTerm{}}
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeJSON[T any](s string, fallback T) (T, error) {
	if s == "" || s == "null" {
		return fallback, nil
	}
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return fallback, err
	}
	return v, nil
}

func transactionRows(email string, items []domain.Transaction) []Transaction {
	rows := make([]Transaction, 0, len(items))
	for i, t := range items {
		rows = append(rows, Transaction{
			UserEmail: email, ID: t.ID, Ordinal: i,
			Name: t.Name, Amount: t.Amount, Date: t.Date, Type: t.Type,
			PaymentMethod: t.PaymentMethod, Paid: t.Paid, Month: t.Month, Year: t.Year,
		})
	}
	return rows
}

func (r Transaction) toDomain() domain.Transaction {
	return domain.Transaction{
		ID: r.ID, Name: r.Name, Amount: r.Amount, Date: r.Date, Type: r.Type,
		PaymentMethod: r.PaymentMethod, Paid: r.Paid, Month: r.Month, Year: r.Year,
	}
}

func accountRows(email string, items []domain.Account) []Account {
	rows := make([]Account, 0, len(items))
	for i, a := range items {
		rows = append(rows, Account{
			UserEmail: email, ID: a.ID, Ordinal: i,
			Name: a.Name, Balance: a.Balance, Color: a.Color, Month: a.Month, Year: a.Year,
		})
	}
	return rows
}

func (r Account) toDomain() domain.Account {
	return domain.Account{ID: r.ID, Name: r.Name, Balance: r.Balance, Color: r.Color, Month: r.Month, Year: r.Year}
}

func investmentRows(email string, items []domain.Investment) []Investment {
	rows := make([]Investment, 0, len(items))
	for i, v := range items {
		rows = append(rows, Investment{
			UserEmail: email, ID: v.ID, Ordinal: i,
			Name: v.Name, Institution: v.Institution, Type: string(v.Type),
			Amount: v.Amount, Quantity: v.Quantity, YieldRate: v.YieldRate,
		})
	}
	return rows
}

func (r Investment) toDomain() domain.Investment {
	return domain.Investment{
		ID: r.ID, Name: r.Name, Institution: r.Institution, Type: domain.InvestmentType(r.Type),
		Amount: r.Amount, Quantity: r.Quantity, YieldRate: r.YieldRate,
	}
}

func notificationRows(email string, items []domain.AppNotification) []Notification {
	rows := make([]Notification, 0, len(items))
	for i, n := range items {
		rows = append(rows, Notification{
			UserEmail: email, ID: n.ID, Ordinal: i,
			Title: n.Title, Message: n.Message, Date: n.Date, Read: n.Read, Kind: n.Kind,
		})
	}
	return rows
}

func (r Notification) toDomain() domain.AppNotification {
	return domain.AppNotification{ID: r.ID, Title: r.Title, Message: r.Message, Date: r.Date, Read: r.Read, Kind: r.Kind}
}

func longTermRows(email string, items []domain.LongTermTransaction) ([]LongTerm, error) {
	rows := make([]LongTerm, 0, len(items))
	for i, lt := range items {
		history := ""
		if len(lt.History) > 0 {
			var err error
			if history, err = encodeJSON(lt.History); err != nil {
				return nil, err
			}
		}
		rows = append(rows, LongTerm{
			UserEmail: email, ID: lt.ID, Ordinal: i,
			Title: lt.Title, TotalAmount: lt.TotalAmount, InstallmentsCount: lt.InstallmentsCount,
			StartDate: lt.StartDate, InstallmentsPaid: lt.InstallmentsPaid,
			History: history, MonthlyAmount: lt.MonthlyAmount,
		})
	}
	return rows, nil
}

func (r LongTerm) toDomain() (domain.LongTermTransaction, error) {
	history, err := decodeJSON[map[int]float64](r.History, nil)
	return domain.LongTermTransaction{
		ID: r.ID, Title: r.Title, TotalAmount: r.TotalAmount, InstallmentsCount: r.InstallmentsCount,
		StartDate: r.StartDate, InstallmentsPaid: r.InstallmentsPaid,
		History: history, MonthlyAmount: r.MonthlyAmount,
	}, err
}
