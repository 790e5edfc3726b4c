package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/copo-api/internal/models"
)

// SettingRepository provides access to the key-value settings table.
type SettingRepository interface {
	Get(ctx context.Context, key string) (models.SystemSetting, error)
	List(ctx context.Context) ([]models.SystemSetting, error)
	Upsert(ctx context.Context, setting *models.SystemSetting) error
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository constructs a setting repository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return models.SystemSetting{}, err
	}
	return setting, nil
}

func (r *settingRepository) List(ctx context.Context) ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingRepository) Upsert(ctx context.Context, setting *models.SystemSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
		}).
		Create(setting).Error
}
