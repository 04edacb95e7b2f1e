package subscriber

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepenbook/backend/internal/eventbus"
	"github.com/thepenbook/backend/internal/model"
)

type fakeCards struct {
	invalidated []string
	all         int
	err         error
}

func (f *fakeCards) Invalidate(ctx context.Context, slug string) error {
	f.invalidated = append(f.invalidated, slug)
	return f.err
}

func (f *fakeCards) InvalidateAll(ctx context.Context) error {
	f.all++
	return f.err
}

func TestWritingSubscriberInvalidatesOldAndNewSlug(t *testing.T) {
	cards := &fakeCards{}
	bus := eventbus.NewWritingEventBus()
	NewWritingEventSubscriber(cards).Register(bus)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, eventbus.WritingEventUpdated, eventbus.WritingEvent{
		Type: eventbus.WritingEventUpdated, WritingID: 1, Slug: "new-title", PrevSlug: "old-title",
	}))
	assert.Equal(t, []string{"new-title", "old-title"}, cards.invalidated)

	cards.invalidated = nil
	require.NoError(t, bus.Publish(ctx, eventbus.WritingEventDeleted, eventbus.WritingEvent{
		Type: eventbus.WritingEventDeleted, WritingID: 1, Slug: "new-title",
	}))
	assert.Equal(t, []string{"new-title"}, cards.invalidated)

	cards.invalidated = nil
	require.NoError(t, bus.Publish(ctx, eventbus.WritingEventViewed, eventbus.WritingEvent{
		Type: eventbus.WritingEventViewed, WritingID: 1, Slug: "new-title", Views: 3,
	}))
	assert.Empty(t, cards.invalidated)
}

func TestWritingSubscriberReportsCacheErrors(t *testing.T) {
	cards := &fakeCards{err: errors.New("redis down")}
	bus := eventbus.NewWritingEventBus()
	NewWritingEventSubscriber(cards).Register(bus)

	err := bus.Publish(context.Background(), eventbus.WritingEventUpdated, eventbus.WritingEvent{Slug: "a"})
	assert.Error(t, err)
}

func TestSettingSubscriberOnlyReactsToSignature(t *testing.T) {
	cards := &fakeCards{}
	bus := eventbus.NewSettingEventBus()
	NewSettingEventSubscriber(cards).Register(bus)
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, eventbus.SettingEventChanged, eventbus.SettingEvent{Key: model.SettingLogoStorageID}))
	assert.Equal(t, 0, cards.all)
	require.NoError(t, bus.Publish(ctx, eventbus.SettingEventChanged, eventbus.SettingEvent{Key: model.SettingSignature, Value: "x"}))
	assert.Equal(t, 1, cards.all)
}
