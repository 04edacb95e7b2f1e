package subscriber

import (
	"context"
	"fmt"

	"github.com/thepenbook/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

type shareCardInvalidator interface {
	Invalidate(ctx context.Context, slug string) error
	InvalidateAll(ctx context.Context) error
}

// WritingEventSubscriber 作品变更后清理分享卡片缓存
type WritingEventSubscriber struct {
	cards shareCardInvalidator
}

func NewWritingEventSubscriber(cards shareCardInvalidator) *WritingEventSubscriber {
	return &WritingEventSubscriber{cards: cards}
}

func (s *WritingEventSubscriber) Register(bus *eventbus.WritingEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.WritingEventCreated, s.handleCreated)
	bus.Subscribe(eventbus.WritingEventUpdated, s.handleChanged)
	bus.Subscribe(eventbus.WritingEventDeleted, s.handleChanged)
	bus.Subscribe(eventbus.WritingEventViewed, s.handleViewed)
}

func (s *WritingEventSubscriber) handleCreated(ctx context.Context, event eventbus.WritingEvent) error {
	klog.V(6).Infof("作品事件: type=%s, writingID=%d, slug=%s", event.Type, event.WritingID, event.Slug)
	return nil
}

// handleChanged 改名时旧 slug 的卡片也要清掉
func (s *WritingEventSubscriber) handleChanged(ctx context.Context, event eventbus.WritingEvent) error {
	if event.Slug == "" {
		return fmt.Errorf("作品事件缺少 slug: writingID=%d", event.WritingID)
	}
	slugs := []string{event.Slug}
	if event.PrevSlug != "" && event.PrevSlug != event.Slug {
		slugs = append(slugs, event.PrevSlug)
	}
	for _, slug := range slugs {
		if err := s.cards.Invalidate(ctx, slug); err != nil {
			return fmt.Errorf("invalidate share card %s: %w", slug, err)
		}
	}
	klog.V(6).Infof("作品事件处理成功: type=%s, writingID=%d, slugs=%v", event.Type, event.WritingID, slugs)
	return nil
}

func (s *WritingEventSubscriber) handleViewed(ctx context.Context, event eventbus.WritingEvent) error {
	klog.V(8).Infof("作品被浏览: writingID=%d, views=%d", event.WritingID, event.Views)
	return nil
}
