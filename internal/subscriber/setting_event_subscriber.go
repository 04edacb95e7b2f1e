package subscriber

import (
	"context"

	"github.com/thepenbook/backend/internal/eventbus"
	"github.com/thepenbook/backend/internal/model"
	"k8s.io/klog/v2"
)

// SettingEventSubscriber 签名变化后所有分享卡片的作者行都会变
type SettingEventSubscriber struct {
	cards shareCardInvalidator
}

func NewSettingEventSubscriber(cards shareCardInvalidator) *SettingEventSubscriber {
	return &SettingEventSubscriber{cards: cards}
}

func (s *SettingEventSubscriber) Register(bus *eventbus.SettingEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.SettingEventChanged, s.handleChanged)
}

func (s *SettingEventSubscriber) handleChanged(ctx context.Context, event eventbus.SettingEvent) error {
	if event.Key != model.SettingSignature {
		return nil
	}
	if err := s.cards.InvalidateAll(ctx); err != nil {
		return err
	}
	klog.V(6).Infof("签名已更新，分享卡片缓存全部失效")
	return nil
}
