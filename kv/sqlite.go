package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// record is the generic key/value row backing the SQLite store. One table
// serves every settings domain so tiny features never grow their own schema.
type record struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (record) TableName() string { return "settings_records" }

// SQLite persists payloads in a SQLite database through gorm, for
// applications that already carry one.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (creating when needed) the database at path and migrates
// the backing table.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("kv: database path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("kv: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("kv: migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// NewSQLite wraps an existing gorm connection, migrating the backing table.
func NewSQLite(db *gorm.DB) (*SQLite, error) {
	if db == nil {
		return nil, errors.New("kv: database handle is required")
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("kv: migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec record
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv: read %s: %w", key, err)
	}
	return rec.Value, true, nil
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	rec := record{Key: key, Value: append([]byte(nil), value...), UpdatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("kv: write %s: %w", key, err)
	}
	return nil
}
