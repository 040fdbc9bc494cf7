// Package remote implements the remote store on gorm. The user record is one
// users row plus one row per entity in each child collection; every
// successful save is published on a change feed.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/finsync/pkg/domain"
	"github.com/amirasaad/finsync/pkg/remote"
	"gorm.io/gorm"
)

// DefaultAvatarURL is assigned to every new profile.
const DefaultAvatarURL = "https://api.dicebear.com/7.x/avataaars/svg?seed=Felix"

// ErrNoFeed is returned by SubscribeToChanges when no change feed is wired.
var ErrNoFeed = errors.New("remote: no change feed configured")

// Client is a remote.Client backed by a relational database.
type Client struct {
	db     *gorm.DB
	feed   remote.Feed
	logger *slog.Logger
}

// New creates a client. feed may be nil, which disables realtime delivery.
func New(db *gorm.DB, feed remote.Feed, logger *slog.Logger) *Client {
	return &Client{db: db, feed: feed, logger: logger.With("component", "remote")}
}

func (c *Client) Login(ctx context.Context, email string) (*domain.UserRecord, error) {
	email = domain.NormalizeEmail(email)
	rec, err := c.LoadUserData(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("login %s: %w", email, domain.ErrNotFound)
	}
	return rec, nil
}

func (c *Client) Register(
	ctx context.Context,
	email, name string,
	initial remote.Change,
) (*domain.UserRecord, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("register: email is required: %w", domain.ErrValidation)
	}
	rec := newRecord(email, name, initial)

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrAlreadyExists
		}
		user, err := userRow(rec)
		if err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return replaceChildren(tx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", email, mapError(err))
	}
	c.logger.Info("user registered", "email", email)
	return rec, nil
}

func (c *Client) LoadUserData(ctx context.Context, email string) (*domain.UserRecord, error) {
	email = domain.NormalizeEmail(email)
	db := c.db.WithContext(ctx)

	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s: %w", email, err)
	}
	rec, err := recordFromUser(user)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", email, err)
	}
	if err := loadChildren(db, rec); err != nil {
		return nil, fmt.Errorf("load %s: %w", email, err)
	}
	normalizeRecord(rec)
	return rec, nil
}

// SaveCollection replaces the named child collection wholesale.
func (c *Client) SaveCollection(ctx context.Context, email string, name remote.Collection, items any) bool {
	email = domain.NormalizeEmail(email)
	ch := remote.Change{Email: email}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveCollection(tx, email, name, items, &ch)
	})
	if err != nil {
		c.logger.Warn("save collection failed", "email", email, "collection", name, "error", err)
		return false
	}
	c.publish(ctx, ch)
	return true
}

// SaveField merges a single top-level field into the users row.
func (c *Client) SaveField(ctx context.Context, email string, name remote.Field, value any) bool {
	email = domain.NormalizeEmail(email)
	ch := remote.Change{Email: email}
	column, stored, err := fieldUpdate(name, value, &ch)
	if err == nil {
		res := c.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Update(column, stored)
		err = res.Error
		if err == nil && res.RowsAffected == 0 {
			err = domain.ErrNotFound
		}
	}
	if err != nil {
		c.logger.Warn("save field failed", "email", email, "field", name, "error", err)
		return false
	}
	c.publish(ctx, ch)
	return true
}

func (c *Client) SubscribeToChanges(
	ctx context.Context,
	email string,
	onChange func(remote.Change),
) (func(), error) {
	if c.feed == nil {
		return nil, ErrNoFeed
	}
	return c.feed.Subscribe(ctx, domain.NormalizeEmail(email), onChange)
}

func (c *Client) publish(ctx context.Context, ch remote.Change) {
	if c.feed == nil {
		return
	}
	if err := c.feed.Publish(context.WithoutCancel(ctx), ch); err != nil {
		c.logger.Warn("change not published", "email", ch.Email, "error", err)
	}
}

func newRecord(email, name string, initial remote.Change) *domain.UserRecord {
	rec := &domain.UserRecord{
		Email:   email,
		Profile: domain.UserProfile{Name: name, AvatarURL: DefaultAvatarURL},
		CDIRate: domain.DefaultCDIRate,
	}
	if p := initial.Profile; p != nil {
		profile := *p
		if profile.Name == "" {
			profile.Name = name
		}
		if profile.AvatarURL == "" {
			profile.AvatarURL = DefaultAvatarURL
		}
		rec.Profile = profile
	}
	if initial.Theme != nil {
		rec.Theme = *initial.Theme
	}
	if initial.Months != nil {
		rec.Months = *initial.Months
	}
	if initial.CDIRate != nil {
		rec.CDIRate = *initial.CDIRate
	}
	if initial.NotepadContent != nil {
		rec.NotepadContent = *initial.NotepadContent
	}
	rec.PushSubscription = initial.PushSubscription
	if initial.Transactions != nil {
		rec.Transactions = *initial.Transactions
	}
	if initial.Accounts != nil {
		rec.Accounts = *initial.Accounts
	}
	if initial.Investments != nil {
		rec.Investments = *initial.Investments
	}
	if initial.Notifications != nil {
		rec.Notifications = *initial.Notifications
	}
	if initial.LongTerm != nil {
		rec.LongTerm = *initial.LongTerm
	}
	normalizeRecord(rec)
	return rec
}

func normalizeRecord(rec *domain.UserRecord) {
	if rec.Months == nil {
		rec.Months = []domain.MonthSummary{}
	}
	if rec.Transactions == nil {
		rec.Transactions = []domain.Transaction{}
	}
	if rec.Accounts == nil {
		rec.Accounts = []domain.Account{}
	}
	if rec.Investments == nil {
		rec.Investments = []domain.Investment{}
	}
	if rec.Notifications == nil {
		rec.Notifications = []domain.AppNotification{}
	}
	if rec.LongTerm == nil {
		rec.LongTerm = []domain.LongTermTransaction{}
	}
}

func userRow(rec *domain.UserRecord) (User, error) {
	profile, err := encodeJSON(rec.Profile)
	if err != nil {
		return User{}, err
	}
	theme, err := encodeJSON(rec.Theme)
	if err != nil {
		return User{}, err
	}
	months, err := encodeJSON(rec.Months)
	if err != nil {
		return User{}, err
	}
	cdi, notepad := rec.CDIRate, rec.NotepadContent
	return User{
		Email:            rec.Email,
		Profile:          profile,
		Theme:            theme,
		Months:           months,
		CDIRate:          &cdi,
		NotepadContent:   &notepad,
		PushSubscription: string(rec.PushSubscription),
	}, nil
}

func recordFromUser(u User) (*domain.UserRecord, error) {
	rec := &domain.UserRecord{Email: u.Email, CDIRate: domain.DefaultCDIRate}
	var err error
	if rec.Profile, err = decodeJSON(u.Profile, domain.UserProfile{}); err != nil {
		return nil, fmt.Errorf("profile: %w: %v", domain.ErrSerialization, err)
	}
	if rec.Theme, err = decodeJSON(u.Theme, domain.AppTheme{}); err != nil {
		return nil, fmt.Errorf("theme: %w: %v", domain.ErrSerialization, err)
	}
	if rec.Months, err = decodeJSON(u.Months, []domain.MonthSummary{}); err != nil {
		return nil, fmt.Errorf("months: %w: %v", domain.ErrSerialization, err)
	}
	if u.CDIRate != nil {
		rec.CDIRate = *u.CDIRate
	}
	if u.NotepadContent != nil {
		rec.NotepadContent = *u.NotepadContent
	}
	if u.PushSubscription != "" {
		rec.PushSubscription = json.RawMessage(u.PushSubscription)
	}
	return rec, nil
}

func loadRows[T any](db *gorm.DB, email string) ([]T, error) {
	var rows []T
	err := db.Where("user_email = ?", email).Order("ordinal").Find(&rows).Error
	return rows, err
}

func loadChildren(db *gorm.DB, rec *domain.UserRecord) error {
	txs, err := loadRows[Transaction](db, rec.Email)
	if err != nil {
		return err
	}
	for _, r := range txs {
		rec.Transactions = append(rec.Transactions, r.toDomain())
	}
	accounts, err := loadRows[Account](db, rec.Email)
	if err != nil {
		return err
	}
	for _, r := range accounts {
		rec.Accounts = append(rec.Accounts, r.toDomain())
	}
	investments, err := loadRows[Investment](db, rec.Email)
	if err != nil {
		return err
	}
	for _, r := range investments {
		rec.Investments = append(rec.Investments, r.toDomain())
	}
	notifications, err := loadRows[Notification](db, rec.Email)
	if err != nil {
		return err
	}
	for _, r := range notifications {
		rec.Notifications = append(rec.Notifications, r.toDomain())
	}
	longTerm, err := loadRows[LongTerm](db, rec.Email)
	if err != nil {
		return err
	}
	for _, r := range longTerm {
		lt, err := r.toDomain()
		if err != nil {
			return fmt.Errorf("long_term %s: %w: %v", r.ID, domain.ErrSerialization, err)
		}
		rec.LongTerm = append(rec.LongTerm, lt)
	}
	return nil
}

func replaceRows[T any](tx *gorm.DB, email string, rows []T) error {
	var model T
	if err := tx.Where("user_email = ?", email).Delete(&model).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 100).Error
}

func replaceChildren(tx *gorm.DB, rec *domain.UserRecord) error {
	var ch remote.Change
	for name, items := range map[remote.Collection]any{
		remote.CollectionTransactions:  rec.Transactions,
		remote.CollectionAccounts:      rec.Accounts,
		remote.CollectionInvestments:   rec.Investments,
		remote.CollectionNotifications: rec.Notifications,
		remote.CollectionLongTerm:      rec.LongTerm,
	} {
		if err := saveCollection(tx, rec.Email, name, items, &ch); err != nil {
			return err
		}
	}
	return nil
}

func itemsOf[T any](name remote.Collection, items any) ([]T, error) {
	switch v := items.(type) {
	case nil:
		return []T{}, nil
	case []T:
		if v == nil {
			return []T{}, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: collection %s cannot hold %T", domain.ErrValidation, name, items)
	}
}

func saveCollection(tx *gorm.DB, email string, name remote.Collection, items any, ch *remote.Change) error {
	switch name {
	case remote.CollectionTransactions:
		v, err := itemsOf[domain.Transaction](name, items)
		if err != nil {
			return err
		}
		ch.Transactions = &v
		return replaceRows(tx, email, transactionRows(email, v))
	case remote.CollectionAccounts:
		v, err := itemsOf[domain.Account](name, items)
		if err != nil {
			return err
		}
		ch.Accounts = &v
		return replaceRows(tx, email, accountRows(email, v))
	case remote.CollectionInvestments:
		v, err := itemsOf[domain.Investment](name, items)
		if err != nil {
			return err
		}
		ch.Investments = &v
		return replaceRows(tx, email, investmentRows(email, v))
	case remote.CollectionNotifications:
		v, err := itemsOf[domain.AppNotification](name, items)
		if err != nil {
			return err
		}
		ch.Notifications = &v
		return replaceRows(tx, email, notificationRows(email, v))
	case remote.CollectionLongTerm:
		v, err := itemsOf[domain.LongTermTransaction](name, items)
		if err != nil {
			return err
		}
		rows, err := longTermRows(email, v)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrSerialization, err)
		}
		ch.LongTerm = &v
		return replaceRows(tx, email, rows)
	default:
		return fmt.Errorf("%w: unknown collection %q", domain.ErrValidation, name)
	}
}

func fieldOf[T any](name remote.Field, value any) (T, error) {
	v, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: field %s cannot hold %T", domain.ErrValidation, name, value)
	}
	return v, nil
}

// fieldUpdate returns the column and stored value for a field write and
// records the change.
func fieldUpdate(name remote.Field, value any, ch *remote.Change) (string, any, error) {
	switch name {
	case remote.FieldProfile:
		v, err := fieldOf[domain.UserProfile](name, value)
		if err != nil {
			return "", nil, err
		}
		ch.Profile = &v
		s, err := encodeJSON(v)
		return "profile", s, err
	case remote.FieldTheme:
		v, err := fieldOf[domain.AppTheme](name, value)
		if err != nil {
			return "", nil, err
		}
		ch.Theme = &v
		s, err := encodeJSON(v)
		return "theme", s, err
	case remote.FieldMonths:
		v, err := fieldOf[[]domain.MonthSummary](name, value)
		if err != nil {
			return "", nil, err
		}
		if v == nil {
			v = []domain.MonthSummary{}
		}
		ch.Months = &v
		s, err := encodeJSON(v)
		return "months", s, err
	case remote.FieldCDIRate:
		v, err := fieldOf[float64](name, value)
		if err != nil {
			return "", nil, err
		}
		ch.CDIRate = &v
		return "cdi_rate", v, nil
	case remote.FieldNotepad:
		v, err := fieldOf[string](name, value)
		if err != nil {
			return "", nil, err
		}
		ch.NotepadContent = &v
		return "notepad_content", v, nil
	case remote.FieldPushSubscription:
		var raw json.RawMessage
		switch v := value.(type) {
		case json.RawMessage:
			raw = v
		case []byte:
			raw = v
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return "", nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
			}
			raw = data
		}
		ch.PushSubscription = raw
		return "push_subscription", string(raw), nil
	default:
		return "", nil, fmt.Errorf("%w: unknown field %q", domain.ErrValidation, name)
	}
}

var _ remote.Client = (*Client)(nil)
