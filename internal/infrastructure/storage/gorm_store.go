package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artcase/storefront/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageEntry is one persisted key-value pair
type StorageEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (StorageEntry) TableName() string {
	return "storage_entries"
}

// GormStore persists entries in the storage_entries table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the value stored under key
func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var entry StorageEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read storage entry: %w", err)
	}
	return entry.Value, nil
}

// Set upserts value under key; the last write wins
func (s *GormStore) Set(ctx context.Context, key, value string) error {
	entry := StorageEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write storage entry: %w", err)
	}
	return nil
}

// Remove deletes key; removing an absent key is not an error
func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&StorageEntry{}).Error; err != nil {
		return fmt.Errorf("failed to remove storage entry: %w", err)
	}
	return nil
}

var _ shared.KeyValueStore = (*GormStore)(nil)
