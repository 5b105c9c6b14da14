// Package settingsrepo reads the generic key/value settings table.
package settingsrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingDTO is one key/value row.
type SettingDTO struct {
	Key       string    `gorm:"type:varchar(128);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SettingDTO) TableName() string {
	return "settings"
}

// GormSettingsRepository implements ports.SettingsStore.
type GormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var dto SettingDTO
	err := r.db.WithContext(ctx).Take(&dto, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return dto.Value, true, nil
}

// Put inserts or replaces a setting.
func (r *GormSettingsRepository) Put(ctx context.Context, key, value string, now time.Time) error {
	dto := SettingDTO{Key: key, Value: value, UpdatedAt: now}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&dto).Error
}
