package penpal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Storage = &GormStorage{}

type stateEntry struct {
	Name      string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (stateEntry) TableName() string {
	return "penpal_session_state"
}

// GormStorage keeps the session state in any database gorm can open.
type GormStorage struct {
	db *gorm.DB
}

// NewPostgresStorage connects to PostgreSQL and migrates the state table.
func NewPostgresStorage(dsn string) (*GormStorage, error) {
	return NewGormStorage(postgres.Open(dsn))
}

func NewGormStorage(dialector gorm.Dialector) (*GormStorage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&stateEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &GormStorage{db: db}, nil
}

func (s *GormStorage) Get(ctx context.Context, key string) (string, error) {
	var entry stateEntry
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("key %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *GormStorage) Set(ctx context.Context, key, value string) error {
	entry := stateEntry{Name: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *GormStorage) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&stateEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
