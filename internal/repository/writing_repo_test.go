package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/pkg/database"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	// :memory: 库每个连接独立，测试内固定单连接
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

func TestWritingRepositoryListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewWritingRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []model.Writing{
		{Title: "A", Slug: "a", Published: true, Category: strPtr("Poetry"), CreatedAt: base},
		{Title: "B", Slug: "b", Published: false, Category: strPtr("Poetry"), CreatedAt: base.Add(time.Hour)},
		{Title: "C", Slug: "c", Published: true, Category: strPtr("Novel"), CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	all, err := repo.List(ctx, WritingFilter{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 3 || all[0].Slug != "c" || all[2].Slug != "a" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	published, err := repo.List(ctx, WritingFilter{PublishedOnly: true})
	if err != nil {
		t.Fatalf("List published error: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published, got %d", len(published))
	}

	poetry, err := repo.List(ctx, WritingFilter{PublishedOnly: true, Category: "Poetry"})
	if err != nil {
		t.Fatalf("List category error: %v", err)
	}
	if len(poetry) != 1 || poetry[0].Slug != "a" {
		t.Fatalf("unexpected category result: %+v", poetry)
	}

	cats, err := repo.PublishedCategories(ctx)
	if err != nil {
		t.Fatalf("PublishedCategories error: %v", err)
	}
	if cats["Poetry"] != 1 || cats["Novel"] != 1 || len(cats) != 2 {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestWritingRepositorySlugExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewWritingRepository(db)
	ctx := context.Background()

	w := &model.Writing{Title: "Hello", Slug: "hello"}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("create error: %v", err)
	}

	exists, err := repo.SlugExists(ctx, "hello", 0)
	if err != nil || !exists {
		t.Fatalf("expected slug to exist, got %v %v", exists, err)
	}
	exists, err = repo.SlugExists(ctx, "hello", w.ID)
	if err != nil || exists {
		t.Fatalf("expected own slug to be excluded, got %v %v", exists, err)
	}

	got, err := repo.GetBySlug(ctx, "missing")
	if !errors.Is(err, ErrNotFound) || got != nil {
		t.Fatalf("expected ErrNotFound, got %v %v", got, err)
	}
}

func TestWritingRepositoryIncrementViews(t *testing.T) {
	db := newTestDB(t)
	repo := NewWritingRepository(db)
	ctx := context.Background()

	w := &model.Writing{Title: "V", Slug: "v", Published: true}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("create error: %v", err)
	}
	for i := 1; i <= 3; i++ {
		views, err := repo.IncrementViews(ctx, w.ID)
		if err != nil {
			t.Fatalf("IncrementViews error: %v", err)
		}
		if views != int64(i) {
			t.Fatalf("expected %d views, got %d", i, views)
		}
	}
	if _, err := repo.IncrementViews(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing writing, got %v", err)
	}
}

func TestWritingRepositoryDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewWritingRepository(db)
	chapters := NewChapterRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	w := &model.Writing{Title: "Novel", Slug: "novel", Category: strPtr("Novel")}
	other := &model.Writing{Title: "Other", Slug: "other"}
	for _, x := range []*model.Writing{w, other} {
		if err := repo.Create(ctx, x); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := chapters.CreateNext(ctx, &model.Chapter{WritingID: w.ID, Title: "ch"}); err != nil {
			t.Fatalf("create chapter error: %v", err)
		}
	}
	if err := chapters.CreateNext(ctx, &model.Chapter{WritingID: other.ID, Title: "keep"}); err != nil {
		t.Fatalf("create chapter error: %v", err)
	}
	if err := comments.Create(ctx, &model.Comment{WritingID: w.ID, Name: "n", Text: "t"}); err != nil {
		t.Fatalf("create comment error: %v", err)
	}

	if err := repo.Delete(ctx, w.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	count, err := chapters.Count(ctx, w.ID)
	if err != nil || count != 0 {
		t.Fatalf("expected chapters removed, got %d %v", count, err)
	}
	count, _ = chapters.Count(ctx, other.ID)
	if count != 1 {
		t.Fatalf("expected other writing's chapter kept, got %d", count)
	}
	list, _ := comments.ListByWriting(ctx, w.ID)
	if len(list) != 0 {
		t.Fatalf("expected comments removed, got %d", len(list))
	}
	if err := repo.Delete(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestWritingRepositoryCoverImageIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewWritingRepository(db)
	ctx := context.Background()

	for _, w := range []*model.Writing{
		{Title: "a", Slug: "a", CoverImageID: strPtr("img-1")},
		{Title: "b", Slug: "b", CoverImageID: strPtr("img-1")},
		{Title: "c", Slug: "c"},
	} {
		if err := repo.Create(ctx, w); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}
	ids, err := repo.CoverImageIDs(ctx)
	if err != nil {
		t.Fatalf("CoverImageIDs error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "img-1" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestWritingRepositorySaveKeepsViews(t *testing.T) {
	repo := NewWritingRepository(newTestDB(t))
	ctx := context.Background()

	w := &model.Writing{Title: "V", Slug: "v", Published: true, Category: strPtr("Poetry")}
	if err := repo.Create(ctx, w); err != nil {
		t.Fatalf("create error: %v", err)
	}
	stale, err := repo.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := repo.IncrementViews(ctx, w.ID); err != nil {
			t.Fatalf("IncrementViews error: %v", err)
		}
	}
	stale.Content = "<p>edited</p>"
	stale.Category = nil
	if err := repo.Save(ctx, stale); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := repo.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Views != 5 {
		t.Fatalf("expected 5 views after edit, got %d", got.Views)
	}
	if got.Content != "<p>edited</p>" || got.Category != nil {
		t.Fatalf("edit not persisted: %+v", got)
	}
}
