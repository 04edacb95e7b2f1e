package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepenbook/backend/internal/eventbus"
	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/pkg/cache"
	"github.com/thepenbook/backend/internal/repository"
)

func TestWritingServiceCreateMakesUniqueSlug(t *testing.T) {
	taken := map[string]bool{"my-first-story": true, "my-first-story-2": true}
	var created *model.Writing
	repo := &mockWritingRepo{
		SlugExistsFunc: func(slug string, excludeID uint) (bool, error) { return taken[slug], nil },
		CreateFunc: func(w *model.Writing) error {
			w.ID = 7
			created = w
			return nil
		},
	}
	svc := NewWritingService(repo, nil, cache.NewMemoryStore())

	w, err := svc.Create(context.Background(), CreateWritingRequest{
		Title:    "  My First Story!  ",
		Content:  `<p>Hi</p><script>alert(1)</script>`,
		ColorTag: strPtr("#ABC"),
		Category: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "my-first-story-3", w.Slug)
	assert.Equal(t, "My First Story!", w.Title)
	assert.NotContains(t, w.Content, "script")
	assert.Nil(t, w.Category)
	require.NotNil(t, w.ColorTag)
	assert.Equal(t, "#abc", *w.ColorTag)
	assert.Same(t, created, w)
}

func TestWritingServiceCreateValidation(t *testing.T) {
	svc := NewWritingService(&mockWritingRepo{}, nil, cache.NewMemoryStore())

	_, err := svc.Create(context.Background(), CreateWritingRequest{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidTitle)

	_, err = svc.Create(context.Background(), CreateWritingRequest{Title: "ok", ColorTag: strPtr("red")})
	assert.ErrorIs(t, err, ErrInvalidColorTag)
}

func TestWritingServiceCreateUntitledSlug(t *testing.T) {
	svc := NewWritingService(&mockWritingRepo{}, nil, cache.NewMemoryStore())
	w, err := svc.Create(context.Background(), CreateWritingRequest{Title: "!!!"})
	require.NoError(t, err)
	assert.Equal(t, "untitled", w.Slug)
}

func TestWritingServiceUpdatePartial(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := &model.Writing{ID: 3, Title: "Old", Slug: "old", Content: "c", Category: strPtr("Poetry"),
		ColorTag: strPtr("#fff"), CreatedAt: created, UpdatedAt: created}
	var excluded uint
	repo := &mockWritingRepo{
		GetFunc: func(id uint) (*model.Writing, error) {
			cp := *stored
			return &cp, nil
		},
		SlugExistsFunc: func(slug string, excludeID uint) (bool, error) {
			excluded = excludeID
			return false, nil
		},
	}
	bus := eventbus.NewWritingEventBus()
	var event eventbus.WritingEvent
	bus.Subscribe(eventbus.WritingEventUpdated, func(ctx context.Context, e eventbus.WritingEvent) error {
		event = e
		return nil
	})

	svc := NewWritingService(repo, bus, cache.NewMemoryStore())
	now := created.Add(time.Hour)
	svc.now = func() time.Time { return now }

	w, err := svc.Update(context.Background(), 3, UpdateWritingRequest{
		Title:    strPtr("New Title"),
		Category: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-title", w.Slug)
	assert.Equal(t, uint(3), excluded)
	assert.Nil(t, w.Category)
	assert.Equal(t, "c", w.Content)
	require.NotNil(t, w.ColorTag)
	assert.Equal(t, now, w.UpdatedAt)
	assert.Equal(t, "old", event.PrevSlug)
	assert.Equal(t, "new-title", event.Slug)
}

func TestWritingServiceUpdateSameTitleKeepsSlug(t *testing.T) {
	repo := &mockWritingRepo{
		GetFunc: func(id uint) (*model.Writing, error) {
			return &model.Writing{ID: id, Title: "Same", Slug: "same-2"}, nil
		},
		SlugExistsFunc: func(slug string, excludeID uint) (bool, error) {
			t.Fatalf("slug should not be regenerated")
			return false, nil
		},
	}
	svc := NewWritingService(repo, nil, cache.NewMemoryStore())
	w, err := svc.Update(context.Background(), 1, UpdateWritingRequest{Title: strPtr("Same")})
	require.NoError(t, err)
	assert.Equal(t, "same-2", w.Slug)
}

func TestWritingServiceTogglePublished(t *testing.T) {
	stored := &model.Writing{ID: 1, Title: "T", Slug: "t"}
	repo := &mockWritingRepo{
		GetFunc: func(id uint) (*model.Writing, error) {
			cp := *stored
			return &cp, nil
		},
		SaveFunc: func(w *model.Writing) error {
			stored = w
			return nil
		},
	}
	svc := NewWritingService(repo, nil, cache.NewMemoryStore())

	w, err := svc.TogglePublished(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, w.Published)
	w, err = svc.TogglePublished(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, w.Published)
}

func TestWritingServiceNotFound(t *testing.T) {
	svc := NewWritingService(&mockWritingRepo{}, nil, cache.NewMemoryStore())
	_, err := svc.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrWritingNotFound)
	err = svc.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, ErrWritingNotFound)
}

func TestWritingServiceRecordViewDedupes(t *testing.T) {
	views := int64(0)
	repo := &mockWritingRepo{
		IncrementViewsFunc: func(id uint) (int64, error) {
			views++
			return views, nil
		},
	}
	svc := NewWritingService(repo, nil, cache.NewMemoryStore())
	w := &model.Writing{ID: 9, Slug: "s", Published: true}
	ctx := context.Background()

	n, counted, err := svc.RecordView(ctx, w, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, counted)
	assert.Equal(t, int64(1), n)

	_, counted, err = svc.RecordView(ctx, w, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, counted)

	_, counted, err = svc.RecordView(ctx, w, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, counted)
	assert.Equal(t, int64(2), views)
}

func TestWritingServiceDeletePublishesEvent(t *testing.T) {
	repo := &mockWritingRepo{
		GetFunc: func(id uint) (*model.Writing, error) {
			return &model.Writing{ID: id, Slug: "gone"}, nil
		},
	}
	bus := eventbus.NewWritingEventBus()
	var got string
	bus.Subscribe(eventbus.WritingEventDeleted, func(ctx context.Context, e eventbus.WritingEvent) error {
		got = e.Slug
		return errors.New("subscriber failure is only logged")
	})
	svc := NewWritingService(repo, bus, cache.NewMemoryStore())

	require.NoError(t, svc.Delete(context.Background(), 4))
	assert.Equal(t, "gone", got)
}

func TestWritingServiceUsedCategoriesKeepsOrder(t *testing.T) {
	repo := &mockWritingRepo{
		PublishedCategoriesFunc: func() (map[string]int64, error) {
			return map[string]int64{"Novel": 2, "Poetry": 1, "Travel": 1}, nil
		},
	}
	svc := NewWritingService(repo, nil, cache.NewMemoryStore())
	used, err := svc.UsedCategories(context.Background(), []string{"Poetry", "Short Stories", "Novel", "Travel"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Poetry", "Novel", "Travel"}, used)
}

func TestWritingServiceListFilters(t *testing.T) {
	var got repository.WritingFilter
	repo := &mockWritingRepo{
		ListFunc: func(filter repository.WritingFilter) ([]model.Writing, error) {
			got = filter
			return []model.Writing{{ID: 1}}, nil
		},
	}
	svc := NewWritingService(repo, nil, cache.NewMemoryStore())

	list, err := svc.ListByCategory(context.Background(), "Essays")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, repository.WritingFilter{PublishedOnly: true, Category: "Essays"}, got)

	_, err = svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.WritingFilter{}, got)
}

// racingWritingRepo 在 Get 返回后执行一次 afterGet
type racingWritingRepo struct {
	repository.WritingRepository
	afterGet func()
}

func (r *racingWritingRepo) Get(ctx context.Context, id uint) (*model.Writing, error) {
	w, err := r.WritingRepository.Get(ctx, id)
	if f := r.afterGet; f != nil {
		r.afterGet = nil
		f()
	}
	return w, err
}

func TestWritingUpdateKeepsConcurrentViews(t *testing.T) {
	base := repository.NewWritingRepository(newTestDB(t))
	racing := &racingWritingRepo{WritingRepository: base}
	svc := NewWritingService(racing, nil, cache.NewMemoryStore())
	ctx := context.Background()

	w, err := svc.Create(ctx, CreateWritingRequest{Title: "Busy", Published: true})
	require.NoError(t, err)

	racing.afterGet = func() {
		for i := 0; i < 5; i++ {
			_, err := base.IncrementViews(ctx, w.ID)
			require.NoError(t, err)
		}
	}
	_, err = svc.Update(ctx, w.ID, UpdateWritingRequest{Content: strPtr("<p>new</p>")})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Views)
	assert.Equal(t, "<p>new</p>", got.Content)
}
