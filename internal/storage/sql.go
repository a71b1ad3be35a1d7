package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Origin    string    `gorm:"primaryKey;size:255"                     json:"origin"`
	Key       string    `gorm:"primaryKey;size:128;column:storage_key" json:"key"`
	Value     string    `gorm:"type:text;not null"                      json:"value"`
	UpdatedAt time.Time `                                               json:"updated_at"`
}

func (Entry) TableName() string { return "storage_entries" }

// SQL persists one origin's entries in a relational table.
type SQL struct {
	DB     *gorm.DB
	Origin string
}

func NewSQL(db *gorm.DB, origin string) *SQL {
	return &SQL{DB: db, Origin: origin}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("migrate storage entries: %w", err)
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.DB.WithContext(ctx).
		Where("origin = ? AND storage_key = ?", s.Origin, key).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db error: %w", err)
	}
	return e.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	e := Entry{Origin: s.Origin, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "origin"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	err := s.DB.WithContext(ctx).
		Where("origin = ? AND storage_key = ?", s.Origin, key).
		Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
