package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thepenbook/backend/internal/eventbus"
	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/repository"
	"k8s.io/klog/v2"
)

// DefaultCategories 内置分类，自定义分类追加在其后
var DefaultCategories = []string{"Poetry", "Short Stories", "Novel", "Essays", "Thoughts"}

// ColorPreset 编辑器颜色标签
type ColorPreset struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var colorPresets = []ColorPreset{
	{Name: "Gold", Hex: "#b68d40"},
	{Name: "Crimson", Hex: "#c0392b"},
	{Name: "Rose", Hex: "#d4708f"},
	{Name: "Amber", Hex: "#e67e22"},
	{Name: "Forest", Hex: "#2e7d5b"},
	{Name: "Ocean", Hex: "#2f6690"},
	{Name: "Violet", Hex: "#7d5ba6"},
	{Name: "Slate", Hex: "#5d6d7e"},
}

type SettingService struct {
	repo repository.SettingRepository
	bus  *eventbus.SettingEventBus
}

func NewSettingService(repo repository.SettingRepository, bus *eventbus.SettingEventBus) *SettingService {
	return &SettingService{repo: repo, bus: bus}
}

// Get 返回设置值，未设置时返回 nil
func (s *SettingService) Get(ctx context.Context, key string) (*string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return &setting.Value, nil
}

func (s *SettingService) GetAll(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

func (s *SettingService) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidSettingKey
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	klog.V(6).Infof("设置已更新: key=%s", key)
	if s.bus != nil {
		event := eventbus.SettingEvent{Type: eventbus.SettingEventChanged, Key: key, Value: value}
		if err := s.bus.Publish(ctx, event.Type, event); err != nil {
			klog.Errorf("设置事件处理失败: key=%s, err=%v", key, err)
		}
	}
	return nil
}

// Signature 站点签名，未设置时为空串
func (s *SettingService) Signature(ctx context.Context) (string, error) {
	v, err := s.Get(ctx, model.SettingSignature)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

// CustomCategories 解析 customCategories，格式错误时按空列表处理
func (s *SettingService) CustomCategories(ctx context.Context) ([]string, error) {
	v, err := s.Get(ctx, model.SettingCustomCategories)
	if err != nil || v == nil || *v == "" {
		return nil, err
	}
	var custom []string
	if err := json.Unmarshal([]byte(*v), &custom); err != nil {
		klog.Warningf("customCategories 格式错误，已忽略: %v", err)
		return nil, nil
	}
	return custom, nil
}

// Categories 内置分类加自定义分类
func (s *SettingService) Categories(ctx context.Context) ([]string, error) {
	custom, err := s.CustomCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(DefaultCategories)+len(custom))
	out = append(out, DefaultCategories...)
	for _, c := range custom {
		if !containsFold(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// AddCategory 添加自定义分类，重复（忽略大小写）时不做修改
func (s *SettingService) AddCategory(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCategory
	}
	all, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if containsFold(all, name) {
		return all, nil
	}
	custom, err := s.CustomCategories(ctx)
	if err != nil {
		return nil, err
	}
	custom = append(custom, name)
	data, err := json.Marshal(custom)
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, model.SettingCustomCategories, string(data)); err != nil {
		return nil, err
	}
	return append(all, name), nil
}

func (s *SettingService) ColorPresets() []ColorPreset {
	return append([]ColorPreset(nil), colorPresets...)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
