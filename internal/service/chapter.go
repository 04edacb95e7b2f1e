package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/pkg/htmltext"
	"github.com/thepenbook/backend/internal/repository"
	"k8s.io/klog/v2"
)

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published *bool  `json:"published"`
}

// UpdateChapterRequest nil 字段保持不变
type UpdateChapterRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

const (
	MoveUp   = "up"
	MoveDown = "down"
)

type ChapterService struct {
	repo     repository.ChapterRepository
	writings *WritingService
}

func NewChapterService(repo repository.ChapterRepository, writings *WritingService) *ChapterService {
	return &ChapterService{repo: repo, writings: writings}
}

func (s *ChapterService) List(ctx context.Context, writingID uint, includeUnpublished bool) ([]model.Chapter, error) {
	chapters, err := s.repo.ListByWriting(ctx, writingID, !includeUnpublished)
	if err != nil {
		return nil, fmt.Errorf("list chapters of %d: %w", writingID, err)
	}
	return chapters, nil
}

func (s *ChapterService) Get(ctx context.Context, id uint) (*model.Chapter, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapChapterErr(err)
	}
	return c, nil
}

func (s *ChapterService) GetByNumber(ctx context.Context, writingID uint, number int) (*model.Chapter, error) {
	c, err := s.repo.GetByNumber(ctx, writingID, number)
	if err != nil {
		return nil, mapChapterErr(err)
	}
	return c, nil
}

// Create 追加章节，章节号为当前数量 +1，标题为空时使用 "Chapter N"
func (s *ChapterService) Create(ctx context.Context, writingID uint, req CreateChapterRequest) (*model.Chapter, error) {
	if _, err := s.writings.GetByID(ctx, writingID); err != nil {
		return nil, err
	}
	published := true
	if req.Published != nil {
		published = *req.Published
	}
	c := &model.Chapter{
		WritingID: writingID,
		Title:     strings.TrimSpace(req.Title),
		Content:   htmltext.Sanitize(req.Content),
		Published: published,
	}
	if c.Title == "" {
		count, err := s.repo.Count(ctx, writingID)
		if err != nil {
			return nil, fmt.Errorf("count chapters of %d: %w", writingID, err)
		}
		c.Title = fmt.Sprintf("Chapter %d", count+1)
	}
	if err := s.repo.CreateNext(ctx, c); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	klog.V(6).Infof("章节已创建: writingID=%d, number=%d", writingID, c.ChapterNumber)
	s.touch(ctx, writingID)
	return c, nil
}

func (s *ChapterService) Update(ctx context.Context, id uint, req UpdateChapterRequest) (*model.Chapter, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapChapterErr(err)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		c.Title = title
	}
	if req.Content != nil {
		c.Content = htmltext.Sanitize(*req.Content)
	}
	if req.Published != nil {
		c.Published = *req.Published
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("update chapter %d: %w", id, err)
	}
	s.touch(ctx, c.WritingID)
	return c, nil
}

// Delete 删除章节，其余章节重新连续编号
func (s *ChapterService) Delete(ctx context.Context, id uint) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapChapterErr(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapChapterErr(err)
	}
	klog.V(6).Infof("章节已删除: writingID=%d, number=%d", c.WritingID, c.ChapterNumber)
	s.touch(ctx, c.WritingID)
	return nil
}

// Move 与上一章或下一章交换章节号
func (s *ChapterService) Move(ctx context.Context, id uint, direction string) (*model.Chapter, error) {
	var delta int
	switch direction {
	case MoveUp:
		delta = -1
	case MoveDown:
		delta = 1
	default:
		return nil, ErrInvalidDirection
	}
	c, err := s.repo.Move(ctx, id, delta)
	if err != nil {
		if errors.Is(err, repository.ErrOutOfRange) {
			return nil, ErrChapterMoveOutOfRange
		}
		return nil, mapChapterErr(err)
	}
	s.touch(ctx, c.WritingID)
	return c, nil
}

func (s *ChapterService) touch(ctx context.Context, writingID uint) {
	if err := s.writings.Touch(ctx, writingID); err != nil {
		klog.Errorf("刷新作品更新时间失败: writingID=%d, err=%v", writingID, err)
	}
}

func mapChapterErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrChapterNotFound
	}
	return err
}
