package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcg-nakama/internal/model"
)

// Setting keys used by the scheduler and price tracker.
const (
	SettingUpdateFrequency     = "price_update_frequency"
	SettingTrackerStatus       = "price_tracker_status"
	SettingTrackerLastError    = "price_tracker_last_error"
	SettingTrackerLastRun      = "price_tracker_last_run"
	SettingTrackerLastUpdated  = "price_tracker_last_updated"
	SettingTrackerLastFailed   = "price_tracker_last_failed"
	SettingTrackerLastSkipped  = "price_tracker_last_skipped"
	SettingTrackerLastTotal    = "price_tracker_last_total"
	SettingTrackerLastDuration = "price_tracker_last_duration"
)

type SettingRepository interface {
	Get(ctx context.Context, key, fallback string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetAll(ctx context.Context, values map[string]string) error
}

type settingRepoImpl struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepoImpl{
		db: db,
	}
}

func (r *settingRepoImpl) Get(ctx context.Context, key, fallback string) (string, error) {
	var setting model.SystemSetting
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return fallback, err
	}

	return setting.Value, nil
}

func (r *settingRepoImpl) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&model.SystemSetting{Key: key, Value: value}).Error
}

func (r *settingRepoImpl) SetAll(ctx context.Context, values map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&model.SystemSetting{Key: key, Value: value}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
