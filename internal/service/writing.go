package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/thepenbook/backend/internal/eventbus"
	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/pkg/cache"
	"github.com/thepenbook/backend/internal/pkg/htmltext"
	"github.com/thepenbook/backend/internal/pkg/slug"
	"github.com/thepenbook/backend/internal/repository"
	"k8s.io/klog/v2"
)

// ViewWindow 同一访客对同一作品的浏览在该窗口内只计一次
const ViewWindow = 30 * time.Minute

var colorTagPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type WritingService struct {
	repo  repository.WritingRepository
	bus   *eventbus.WritingEventBus
	store cache.Store
	now   func() time.Time
}

func NewWritingService(repo repository.WritingRepository, bus *eventbus.WritingEventBus, store cache.Store) *WritingService {
	return &WritingService{
		repo:  repo,
		bus:   bus,
		store: store,
		now:   time.Now,
	}
}

type CreateWritingRequest struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Published    bool    `json:"published"`
	Category     *string `json:"category"`
	ColorTag     *string `json:"color_tag"`
	CoverImageID *string `json:"cover_image_id"`
}

// UpdateWritingRequest nil 字段保持不变；Category/ColorTag/CoverImageID 传空串表示清除
type UpdateWritingRequest struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	Published    *bool   `json:"published"`
	Category     *string `json:"category"`
	ColorTag     *string `json:"color_tag"`
	CoverImageID *string `json:"cover_image_id"`
}

func (s *WritingService) ListPublished(ctx context.Context) ([]WritingView, error) {
	return s.list(ctx, repository.WritingFilter{PublishedOnly: true})
}

func (s *WritingService) ListByCategory(ctx context.Context, category string) ([]WritingView, error) {
	return s.list(ctx, repository.WritingFilter{PublishedOnly: true, Category: category})
}

func (s *WritingService) ListAll(ctx context.Context) ([]WritingView, error) {
	return s.list(ctx, repository.WritingFilter{})
}

func (s *WritingService) list(ctx context.Context, filter repository.WritingFilter) ([]WritingView, error) {
	writings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list writings: %w", err)
	}
	return newWritingViews(writings, s.now()), nil
}

func (s *WritingService) GetBySlug(ctx context.Context, slugValue string) (*model.Writing, error) {
	w, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, mapWritingErr(err)
	}
	return w, nil
}

func (s *WritingService) GetByID(ctx context.Context, id uint) (*model.Writing, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapWritingErr(err)
	}
	return w, nil
}

// View 包装作品并计算徽标
func (s *WritingService) View(w model.Writing) WritingView {
	return newWritingView(w, s.now())
}

func (s *WritingService) Create(ctx context.Context, req CreateWritingRequest) (*model.Writing, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	colorTag, err := normalizeColorTag(req.ColorTag)
	if err != nil {
		return nil, err
	}
	uniq, err := s.uniqueSlug(ctx, title, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	w := &model.Writing{
		Title:        title,
		Content:      htmltext.Sanitize(req.Content),
		Slug:         uniq,
		Published:    req.Published,
		Category:     optional(req.Category),
		ColorTag:     colorTag,
		CoverImageID: optional(req.CoverImageID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create writing: %w", err)
	}
	klog.V(6).Infof("作品已创建: id=%d, slug=%s, published=%t", w.ID, w.Slug, w.Published)
	s.publish(ctx, eventbus.WritingEvent{Type: eventbus.WritingEventCreated, WritingID: w.ID, Slug: w.Slug})
	return w, nil
}

func (s *WritingService) Update(ctx context.Context, id uint, req UpdateWritingRequest) (*model.Writing, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapWritingErr(err)
	}
	prevSlug := w.Slug

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		if title != w.Title {
			uniq, err := s.uniqueSlug(ctx, title, w.ID)
			if err != nil {
				return nil, err
			}
			w.Title = title
			w.Slug = uniq
		}
	}
	if req.Content != nil {
		w.Content = htmltext.Sanitize(*req.Content)
	}
	if req.Published != nil {
		w.Published = *req.Published
	}
	if req.Category != nil {
		w.Category = optional(req.Category)
	}
	if req.ColorTag != nil {
		colorTag, err := normalizeColorTag(req.ColorTag)
		if err != nil {
			return nil, err
		}
		w.ColorTag = colorTag
	}
	if req.CoverImageID != nil {
		w.CoverImageID = optional(req.CoverImageID)
	}
	w.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("update writing %d: %w", id, err)
	}
	klog.V(6).Infof("作品已更新: id=%d, slug=%s", w.ID, w.Slug)
	s.publish(ctx, eventbus.WritingEvent{Type: eventbus.WritingEventUpdated, WritingID: w.ID, Slug: w.Slug, PrevSlug: prevSlug})
	return w, nil
}

func (s *WritingService) SetPublished(ctx context.Context, id uint, published bool) (*model.Writing, error) {
	return s.Update(ctx, id, UpdateWritingRequest{Published: &published})
}

func (s *WritingService) TogglePublished(ctx context.Context, id uint) (*model.Writing, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapWritingErr(err)
	}
	return s.SetPublished(ctx, id, !w.Published)
}

// Delete 删除作品及其全部章节和评论
func (s *WritingService) Delete(ctx context.Context, id uint) error {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapWritingErr(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapWritingErr(err)
	}
	klog.V(6).Infof("作品已删除: id=%d, slug=%s", id, w.Slug)
	s.publish(ctx, eventbus.WritingEvent{Type: eventbus.WritingEventDeleted, WritingID: id, Slug: w.Slug})
	return nil
}

// Touch 刷新作品更新时间（章节变更时调用）
func (s *WritingService) Touch(ctx context.Context, id uint) error {
	if err := s.repo.Touch(ctx, id, s.now()); err != nil {
		return fmt.Errorf("touch writing %d: %w", id, err)
	}
	return nil
}

// RecordView 记录一次浏览，viewerKey 为空时不去重；返回当前浏览数和本次是否计数
func (s *WritingService) RecordView(ctx context.Context, w *model.Writing, viewerKey string) (int64, bool, error) {
	if viewerKey != "" && s.store != nil {
		key := fmt.Sprintf("view:%d:%s", w.ID, viewerKey)
		fresh, err := s.store.SetNX(ctx, key, []byte{1}, ViewWindow)
		if err != nil {
			klog.Warningf("浏览去重失败，按新浏览计数: id=%d, err=%v", w.ID, err)
		} else if !fresh {
			return w.Views, false, nil
		}
	}
	views, err := s.repo.IncrementViews(ctx, w.ID)
	if err != nil {
		return w.Views, false, mapWritingErr(err)
	}
	s.publish(ctx, eventbus.WritingEvent{Type: eventbus.WritingEventViewed, WritingID: w.ID, Slug: w.Slug, Views: views})
	return views, true, nil
}

// UsedCategories 至少有一篇已发布作品的分类，按 all 的顺序返回
func (s *WritingService) UsedCategories(ctx context.Context, all []string) ([]string, error) {
	counts, err := s.repo.PublishedCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	used := make([]string, 0, len(all))
	for _, c := range all {
		if counts[c] > 0 {
			used = append(used, c)
		}
	}
	return used, nil
}

func (s *WritingService) uniqueSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	uniq, err := slug.Unique(slug.Generate(title), func(candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, candidate, excludeID)
	})
	if err != nil {
		return "", fmt.Errorf("generate slug: %w", err)
	}
	return uniq, nil
}

func (s *WritingService) publish(ctx context.Context, event eventbus.WritingEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event.Type, event); err != nil {
		klog.Errorf("事件处理失败: type=%s, writingID=%d, err=%v", event.Type, event.WritingID, err)
	}
}

func normalizeColorTag(tag *string) (*string, error) {
	v := optional(tag)
	if v == nil {
		return nil, nil
	}
	if !colorTagPattern.MatchString(*v) {
		return nil, ErrInvalidColorTag
	}
	lower := strings.ToLower(*v)
	return &lower, nil
}

// optional 去除首尾空白，空串视为未设置
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func mapWritingErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWritingNotFound
	}
	return err
}
