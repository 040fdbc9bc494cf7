package localstore

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/finsync/pkg/localstore"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one persisted key.
type Entry struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for the Entry model.
func (Entry) TableName() string {
	return "local_entries"
}

// SQLite implements localstore.Store on a single sqlite table.
type SQLite struct {
	db     *gorm.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the sqlite file at path.
func OpenSQLite(path string, log *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("local store: path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("local store: open %s: %w", path, err)
	}
	return NewSQLite(db, log)
}

// NewSQLite wraps an existing gorm connection and migrates the entry table.
func NewSQLite(db *gorm.DB, log *slog.Logger) (*SQLite, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("local store: migrate: %w", err)
	}
	return &SQLite{db: db, logger: log.With("component", "local-store")}, nil
}

func (s *SQLite) Get(key string) ([]byte, error) {
	var e Entry
	if err := s.db.First(&e, "name = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, localstore.ErrMissing
		}
		return nil, err
	}
	return e.Value, nil
}

func (s *SQLite) Put(key string, data []byte) error {
	e := Entry{Name: key, Value: data, UpdatedAt: time.Now().UTC()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		s.logger.Error("local store write failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	return s.db.Delete(&Entry{}, "name = ?", key).Error
}

var _ localstore.Store = (*SQLite)(nil)
