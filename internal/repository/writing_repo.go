package repository

import (
	"context"
	"errors"
	"time"

	"github.com/thepenbook/backend/internal/model"
	"gorm.io/gorm"
)

type writingRepository struct {
	db *gorm.DB
}

func NewWritingRepository(db *gorm.DB) WritingRepository {
	return &writingRepository{db: db}
}

func (r *writingRepository) Create(ctx context.Context, w *model.Writing) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *writingRepository) Get(ctx context.Context, id uint) (*model.Writing, error) {
	var w model.Writing
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *writingRepository) GetBySlug(ctx context.Context, slug string) (*model.Writing, error) {
	var w model.Writing
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *writingRepository) List(ctx context.Context, filter WritingFilter) ([]model.Writing, error) {
	var writings []model.Writing
	q := r.db.WithContext(ctx).Model(&model.Writing{})
	if filter.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	err := q.Order("created_at DESC, id DESC").Find(&writings).Error
	return writings, err
}

// Save 只写回可编辑列；views 由 IncrementViews 维护，不能被旧值覆盖
func (r *writingRepository) Save(ctx context.Context, w *model.Writing) error {
	return r.db.WithContext(ctx).Model(w).
		Select("title", "content", "slug", "published", "category", "color_tag", "cover_image_id", "updated_at").
		Updates(w).Error
}

func (r *writingRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Writing{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *writingRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Writing{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
}

// IncrementViews 原子自增浏览数，返回自增后的值
func (r *writingRepository) IncrementViews(ctx context.Context, id uint) (int64, error) {
	var views int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Writing{}).
			Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&model.Writing{}).Select("views").Where("id = ?", id).Scan(&views).Error
	})
	return views, err
}

func (r *writingRepository) PublishedCategories(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category string
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Writing{}).
		Select("category, COUNT(*) AS total").
		Where("published = ? AND category IS NOT NULL AND category <> ''", true).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Category] = row.Total
	}
	return out, nil
}

func (r *writingRepository) CoverImageIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Writing{}).
		Where("cover_image_id IS NOT NULL AND cover_image_id <> ''").
		Distinct().
		Pluck("cover_image_id", &ids).Error
	return ids, err
}

func (r *writingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("writing_id = ?", id).Delete(&model.Chapter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("writing_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Writing{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
