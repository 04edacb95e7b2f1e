package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/repository"
	"k8s.io/klog/v2"
)

const (
	maxCommentText = 2000
	maxCommentName = 80
	anonymousName  = "Anonymous"
)

type AddCommentRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type CommentService struct {
	repo     repository.CommentRepository
	writings repository.WritingRepository
}

func NewCommentService(repo repository.CommentRepository, writings repository.WritingRepository) *CommentService {
	return &CommentService{repo: repo, writings: writings}
}

// Add 只能评论已发布的作品
func (s *CommentService) Add(ctx context.Context, writingID uint, req AddCommentRequest) (*model.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" || utf8.RuneCountInString(text) > maxCommentText {
		return nil, ErrInvalidComment
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = anonymousName
	}
	if utf8.RuneCountInString(name) > maxCommentName {
		name = string([]rune(name)[:maxCommentName])
	}

	w, err := s.writings.Get(ctx, writingID)
	if err != nil {
		return nil, mapWritingErr(err)
	}
	if !w.Published {
		return nil, ErrWritingNotFound
	}

	c := &model.Comment{WritingID: writingID, Name: name, Text: text}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	klog.V(6).Infof("新评论: writingID=%d, commentID=%d", writingID, c.ID)
	return c, nil
}

// List 草稿的评论对外不可见
func (s *CommentService) List(ctx context.Context, writingID uint) ([]model.Comment, error) {
	w, err := s.writings.Get(ctx, writingID)
	if err != nil {
		return nil, mapWritingErr(err)
	}
	if !w.Published {
		return nil, ErrWritingNotFound
	}
	comments, err := s.repo.ListByWriting(ctx, writingID)
	if err != nil {
		return nil, fmt.Errorf("list comments of %d: %w", writingID, err)
	}
	return comments, nil
}

func (s *CommentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return nil
}
