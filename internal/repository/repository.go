package repository

import (
	"context"
	"errors"
	"time"

	"github.com/thepenbook/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// ErrOutOfRange 章节移动目标超出 1..count
var ErrOutOfRange = errors.New("chapter number out of range")

// WritingFilter 作品列表过滤条件
type WritingFilter struct {
	PublishedOnly bool
	Category      string
}

type WritingRepository interface {
	Create(ctx context.Context, w *model.Writing) error
	Get(ctx context.Context, id uint) (*model.Writing, error)
	GetBySlug(ctx context.Context, slug string) (*model.Writing, error)
	// List 按创建时间倒序
	List(ctx context.Context, filter WritingFilter) ([]model.Writing, error)
	Save(ctx context.Context, w *model.Writing) error
	// SlugExists 判断 slug 是否被 excludeID 以外的作品占用
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	Touch(ctx context.Context, id uint, at time.Time) error
	IncrementViews(ctx context.Context, id uint) (int64, error)
	// PublishedCategories 已发布作品使用到的分类及数量
	PublishedCategories(ctx context.Context) (map[string]int64, error)
	CoverImageIDs(ctx context.Context) ([]string, error)
	// Delete 在同一事务中删除作品及其章节、评论
	Delete(ctx context.Context, id uint) error
}

type ChapterRepository interface {
	// CreateNext 以 count+1 作为章节号创建章节
	CreateNext(ctx context.Context, c *model.Chapter) error
	Get(ctx context.Context, id uint) (*model.Chapter, error)
	GetByNumber(ctx context.Context, writingID uint, number int) (*model.Chapter, error)
	ListByWriting(ctx context.Context, writingID uint, publishedOnly bool) ([]model.Chapter, error)
	Count(ctx context.Context, writingID uint) (int64, error)
	Save(ctx context.Context, c *model.Chapter) error
	// Delete 删除章节并将其余章节重新连续编号
	Delete(ctx context.Context, id uint) error
	// Move 与相邻章节交换章节号，delta 为 -1 或 +1
	Move(ctx context.Context, id uint, delta int) (*model.Chapter, error)
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	List(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, key, value string) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	Get(ctx context.Context, id uint) (*model.Comment, error)
	// ListByWriting 按创建时间倒序
	ListByWriting(ctx context.Context, writingID uint) ([]model.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type FileRepository interface {
	Create(ctx context.Context, f *model.StoredFile) error
	GetByStorageID(ctx context.Context, storageID string) (*model.StoredFile, error)
	GetByHash(ctx context.Context, hash string) (*model.StoredFile, error)
	ListCreatedBefore(ctx context.Context, before time.Time) ([]model.StoredFile, error)
	// Touch 更新 created_at，用于重复上传时刷新清理宽限期
	Touch(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}
