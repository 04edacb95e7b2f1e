package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/pkg/database"
	"github.com/thepenbook/backend/internal/repository"
	"gorm.io/gorm"
)

type mockWritingRepo struct {
	CreateFunc              func(w *model.Writing) error
	GetFunc                 func(id uint) (*model.Writing, error)
	GetBySlugFunc           func(slug string) (*model.Writing, error)
	ListFunc                func(filter repository.WritingFilter) ([]model.Writing, error)
	SaveFunc                func(w *model.Writing) error
	SlugExistsFunc          func(slug string, excludeID uint) (bool, error)
	TouchFunc               func(id uint, at time.Time) error
	IncrementViewsFunc      func(id uint) (int64, error)
	PublishedCategoriesFunc func() (map[string]int64, error)
	CoverImageIDsFunc       func() ([]string, error)
	DeleteFunc              func(id uint) error
}

func (m *mockWritingRepo) Create(ctx context.Context, w *model.Writing) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(w)
	}
	return nil
}

func (m *mockWritingRepo) Get(ctx context.Context, id uint) (*model.Writing, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockWritingRepo) GetBySlug(ctx context.Context, slug string) (*model.Writing, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(slug)
	}
	return nil, repository.ErrNotFound
}

func (m *mockWritingRepo) List(ctx context.Context, filter repository.WritingFilter) ([]model.Writing, error) {
	if m.ListFunc != nil {
		return m.ListFunc(filter)
	}
	return nil, nil
}

func (m *mockWritingRepo) Save(ctx context.Context, w *model.Writing) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(w)
	}
	return nil
}

func (m *mockWritingRepo) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	if m.SlugExistsFunc != nil {
		return m.SlugExistsFunc(slug, excludeID)
	}
	return false, nil
}

func (m *mockWritingRepo) Touch(ctx context.Context, id uint, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(id, at)
	}
	return nil
}

func (m *mockWritingRepo) IncrementViews(ctx context.Context, id uint) (int64, error) {
	if m.IncrementViewsFunc != nil {
		return m.IncrementViewsFunc(id)
	}
	return 0, nil
}

func (m *mockWritingRepo) PublishedCategories(ctx context.Context) (map[string]int64, error) {
	if m.PublishedCategoriesFunc != nil {
		return m.PublishedCategoriesFunc()
	}
	return map[string]int64{}, nil
}

func (m *mockWritingRepo) CoverImageIDs(ctx context.Context) ([]string, error) {
	if m.CoverImageIDsFunc != nil {
		return m.CoverImageIDsFunc()
	}
	return nil, nil
}

func (m *mockWritingRepo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}

type mockSettingRepo struct {
	values map[string]string
	err    error
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{values: map[string]string{}}
}

func (m *mockSettingRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.values[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Setting{Key: key, Value: v}, nil
}

func (m *mockSettingRepo) List(ctx context.Context) ([]model.Setting, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Setting, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, model.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (m *mockSettingRepo) Upsert(ctx context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

type mockCommentRepo struct {
	CreateFunc        func(c *model.Comment) error
	GetFunc           func(id uint) (*model.Comment, error)
	ListByWritingFunc func(writingID uint) ([]model.Comment, error)
	DeleteFunc        func(id uint) error
}

func (m *mockCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(c)
	}
	return nil
}

func (m *mockCommentRepo) Get(ctx context.Context, id uint) (*model.Comment, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockCommentRepo) ListByWriting(ctx context.Context, writingID uint) ([]model.Comment, error) {
	if m.ListByWritingFunc != nil {
		return m.ListByWritingFunc(writingID)
	}
	return nil, nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(id)
	}
	return nil
}

// newTestDB 章节、文件等涉及事务的服务直接跑在内存 sqlite 上
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
