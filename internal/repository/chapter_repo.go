package repository

import (
	"context"
	"errors"

	"github.com/thepenbook/backend/internal/model"
	"gorm.io/gorm"
)

type chapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) CreateNext(ctx context.Context, c *model.Chapter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Chapter{}).Where("writing_id = ?", c.WritingID).Count(&count).Error; err != nil {
			return err
		}
		c.ChapterNumber = int(count) + 1
		return tx.Create(c).Error
	})
}

func (r *chapterRepository) Get(ctx context.Context, id uint) (*model.Chapter, error) {
	var c model.Chapter
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *chapterRepository) GetByNumber(ctx context.Context, writingID uint, number int) (*model.Chapter, error) {
	var c model.Chapter
	err := r.db.WithContext(ctx).
		Where("writing_id = ? AND chapter_number = ?", writingID, number).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *chapterRepository) ListByWriting(ctx context.Context, writingID uint, publishedOnly bool) ([]model.Chapter, error) {
	var chapters []model.Chapter
	q := r.db.WithContext(ctx).Where("writing_id = ?", writingID)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	err := q.Order("chapter_number ASC, id ASC").Find(&chapters).Error
	return chapters, err
}

func (r *chapterRepository) Count(ctx context.Context, writingID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Chapter{}).Where("writing_id = ?", writingID).Count(&count).Error
	return count, err
}

// Save 只写回可编辑列；chapter_number 只由 CreateNext、Delete、Move 修改
func (r *chapterRepository) Save(ctx context.Context, c *model.Chapter) error {
	return r.db.WithContext(ctx).Model(c).
		Select("title", "content", "published", "updated_at").
		Updates(c).Error
}

func (r *chapterRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Chapter
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&model.Chapter{}, id).Error; err != nil {
			return err
		}

		var rest []model.Chapter
		if err := tx.Where("writing_id = ?", c.WritingID).
			Order("chapter_number ASC, id ASC").
			Find(&rest).Error; err != nil {
			return err
		}
		for i, ch := range rest {
			if ch.ChapterNumber == i+1 {
				continue
			}
			if err := tx.Model(&model.Chapter{}).
				Where("id = ?", ch.ID).
				UpdateColumn("chapter_number", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *chapterRepository) Move(ctx context.Context, id uint, delta int) (*model.Chapter, error) {
	var moved model.Chapter
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&moved, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.Chapter{}).Where("writing_id = ?", moved.WritingID).Count(&count).Error; err != nil {
			return err
		}
		target := moved.ChapterNumber + delta
		if target < 1 || target > int(count) {
			return ErrOutOfRange
		}

		var neighbour model.Chapter
		if err := tx.Where("writing_id = ? AND chapter_number = ?", moved.WritingID, target).
			First(&neighbour).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOutOfRange
			}
			return err
		}

		if err := tx.Model(&model.Chapter{}).Where("id = ?", neighbour.ID).
			UpdateColumn("chapter_number", moved.ChapterNumber).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Chapter{}).Where("id = ?", moved.ID).
			UpdateColumn("chapter_number", target).Error; err != nil {
			return err
		}
		moved.ChapterNumber = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}
