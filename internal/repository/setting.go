package repository

import (
	"context"

	"velum-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) List(ctx context.Context) ([]models.AppSetting, error) {
	var settings []models.AppSetting
	return settings, r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
}

// Get returns the value for key and whether it was set.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var settings []models.AppSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&settings).Error; err != nil {
		return "", false, err
	}
	if len(settings) == 0 {
		return "", false, nil
	}
	return settings[0].Value, true, nil
}

// Upsert inserts or overwrites every given setting in one transaction.
func (r *SettingRepository) Upsert(ctx context.Context, settings []models.AppSetting) error {
	if len(settings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&settings).Error
}

// DeleteAll removes every override so configured defaults apply again.
func (r *SettingRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.AppSetting{})
	return res.RowsAffected, res.Error
}
