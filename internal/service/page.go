package service

import (
	"context"

	"github.com/thepenbook/backend/internal/model"
	"k8s.io/klog/v2"
)

// HomePage 首页数据
type HomePage struct {
	Signature  string        `json:"signature"`
	LogoURL    *string       `json:"logo_url,omitempty"`
	Latest     *WritingView  `json:"latest,omitempty"`
	Categories []string      `json:"categories"`
	Category   string        `json:"category,omitempty"`
	Writings   []WritingView `json:"writings"`
}

// ChapterEntry 目录条目
type ChapterEntry struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	ChapterNumber int    `json:"chapter_number"`
}

// ReadingPage 阅读页数据；Chapter 为空时展示作品正文
type ReadingPage struct {
	Writing   WritingView    `json:"writing"`
	Chapters  []ChapterEntry `json:"chapters"`
	Chapter   *model.Chapter `json:"chapter,omitempty"`
	Prev      *int           `json:"prev,omitempty"`
	Next      *int           `json:"next,omitempty"`
	Signature string         `json:"signature"`
}

type PageService struct {
	writings *WritingService
	chapters *ChapterService
	settings *SettingService
}

func NewPageService(writings *WritingService, chapters *ChapterService, settings *SettingService) *PageService {
	return &PageService{writings: writings, chapters: chapters, settings: settings}
}

// Home category 为空时列出全部已发布作品
func (s *PageService) Home(ctx context.Context, category string) (*HomePage, error) {
	signature, err := s.settings.Signature(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.settings.Categories(ctx)
	if err != nil {
		return nil, err
	}
	used, err := s.writings.UsedCategories(ctx, all)
	if err != nil {
		return nil, err
	}
	published, err := s.writings.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	page := &HomePage{
		Signature:  signature,
		Categories: used,
		Category:   category,
		Writings:   published,
	}
	if len(published) > 0 {
		latest := published[0]
		page.Latest = &latest
	}
	if category != "" {
		page.Writings = filterCategory(published, category)
	}
	if logo, err := s.settings.Get(ctx, model.SettingLogoStorageID); err == nil && logo != nil && *logo != "" {
		u := FileURL(*logo)
		page.LogoURL = &u
	}
	return page, nil
}

// Read 阅读页，只展示已发布的作品和章节，并记录一次浏览
func (s *PageService) Read(ctx context.Context, slug string, chapterNumber *int, viewerKey string) (*ReadingPage, error) {
	w, err := s.writings.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !w.Published {
		return nil, ErrWritingNotFound
	}

	chapters, err := s.chapters.List(ctx, w.ID, false)
	if err != nil {
		return nil, err
	}
	signature, err := s.settings.Signature(ctx)
	if err != nil {
		return nil, err
	}

	page := &ReadingPage{
		Chapters:  make([]ChapterEntry, 0, len(chapters)),
		Signature: signature,
	}
	for _, c := range chapters {
		page.Chapters = append(page.Chapters, ChapterEntry{ID: c.ID, Title: c.Title, ChapterNumber: c.ChapterNumber})
	}

	if chapterNumber != nil {
		idx := -1
		for i, c := range chapters {
			if c.ChapterNumber == *chapterNumber {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrChapterNotFound
		}
		current := chapters[idx]
		page.Chapter = &current
		if idx > 0 {
			prev := chapters[idx-1].ChapterNumber
			page.Prev = &prev
		}
		if idx < len(chapters)-1 {
			next := chapters[idx+1].ChapterNumber
			page.Next = &next
		}
	}

	views, _, err := s.writings.RecordView(ctx, w, viewerKey)
	if err != nil {
		klog.Errorf("记录浏览失败: slug=%s, err=%v", slug, err)
	} else {
		w.Views = views
	}
	page.Writing = s.writings.View(*w)
	return page, nil
}

func filterCategory(list []WritingView, category string) []WritingView {
	out := make([]WritingView, 0, len(list))
	for _, w := range list {
		if w.Category != nil && *w.Category == category {
			out = append(out, w)
		}
	}
	return out
}
