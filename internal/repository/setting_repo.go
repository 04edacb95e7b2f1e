package repository

import (
	"context"
	"errors"

	"github.com/thepenbook/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// key 在 MySQL 中是保留字，条件和排序都交给 gorm 加引号
func (r *settingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var s model.Setting
	if err := r.db.WithContext(ctx).Where(&model.Setting{Key: key}).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) List(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&settings).Error
	return settings, err
}

// Upsert 按 key 写入，已存在时覆盖 value
func (r *settingRepository) Upsert(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&model.Setting{Key: key, Value: value}).Error
}
