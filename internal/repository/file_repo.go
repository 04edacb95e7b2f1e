package repository

import (
	"context"
	"errors"
	"time"

	"github.com/thepenbook/backend/internal/model"
	"gorm.io/gorm"
)

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, f *model.StoredFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fileRepository) GetByStorageID(ctx context.Context, storageID string) (*model.StoredFile, error) {
	return r.first(ctx, "storage_id = ?", storageID)
}

func (r *fileRepository) GetByHash(ctx context.Context, hash string) (*model.StoredFile, error) {
	return r.first(ctx, "file_hash = ?", hash)
}

func (r *fileRepository) first(ctx context.Context, query string, arg any) (*model.StoredFile, error) {
	var f model.StoredFile
	if err := r.db.WithContext(ctx).Where(query, arg).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *fileRepository) ListCreatedBefore(ctx context.Context, before time.Time) ([]model.StoredFile, error) {
	var files []model.StoredFile
	err := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Order("created_at ASC").
		Find(&files).Error
	return files, err
}

func (r *fileRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.StoredFile{}).Where("id = ?", id).
		UpdateColumn("created_at", at).Error
}

func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.StoredFile{}, id).Error
}
