package service

import (
	"context"
	"strings"
	"time"

	"github.com/thepenbook/backend/internal/pkg/debounce"
	"k8s.io/klog/v2"
)

// Draft 编辑器自动保存的草稿
type Draft struct {
	ID       *uint   `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category"`
	ColorTag *string `json:"color_tag"`
}

// AutosaveResult Pending 为 true 表示草稿已排队，稍后写入
type AutosaveResult struct {
	ID      uint `json:"id"`
	Pending bool `json:"pending"`
	Created bool `json:"created"`
}

// AutosaveService 按作品合并编辑器的连续保存，窗口内只写入最后一份草稿
type AutosaveService struct {
	writings *WritingService
	queue    *debounce.Keyed[uint, Draft]
}

func NewAutosaveService(writings *WritingService, window time.Duration) *AutosaveService {
	s := &AutosaveService{writings: writings}
	s.queue = debounce.NewKeyed[uint, Draft](window, s.write)
	return s
}

// Save 标题为空时返回 nil；没有 ID 时立即创建未发布的草稿
func (s *AutosaveService) Save(ctx context.Context, d Draft) (*AutosaveResult, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, nil
	}
	if d.ID == nil || *d.ID == 0 {
		w, err := s.writings.Create(ctx, CreateWritingRequest{
			Title:    d.Title,
			Content:  d.Content,
			Category: d.Category,
			ColorTag: d.ColorTag,
		})
		if err != nil {
			return nil, err
		}
		return &AutosaveResult{ID: w.ID, Created: true}, nil
	}

	id := *d.ID
	if _, err := s.writings.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := normalizeColorTag(d.ColorTag); err != nil {
		return nil, err
	}
	if !s.queue.Push(id, d) {
		// 已关闭，直接写入
		s.write(id, d)
		return &AutosaveResult{ID: id}, nil
	}
	return &AutosaveResult{ID: id, Pending: true}, nil
}

// Flush 立即写入该作品待保存的草稿，没有待保存内容时返回 false
func (s *AutosaveService) Flush(id uint) bool {
	return s.queue.Flush(id)
}

func (s *AutosaveService) Pending(id uint) bool {
	return s.queue.Pending(id)
}

// Close 写入所有待保存草稿
func (s *AutosaveService) Close() {
	s.queue.Close()
}

func (s *AutosaveService) write(id uint, d Draft) {
	content := d.Content
	req := UpdateWritingRequest{
		Title:    &d.Title,
		Content:  &content,
		Category: d.Category,
		ColorTag: d.ColorTag,
	}
	if _, err := s.writings.Update(context.Background(), id, req); err != nil {
		klog.Errorf("自动保存失败: id=%d, err=%v", id, err)
		return
	}
	klog.V(6).Infof("自动保存完成: id=%d", id)
}
