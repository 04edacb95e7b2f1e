package service

import (
	"time"

	"github.com/thepenbook/backend/internal/model"
)

// BadgeWindow "新作"/"最近更新" 标记的时间窗口
const BadgeWindow = 48 * time.Hour

// IsNewWriting 创建于 48 小时内
func IsNewWriting(created, now time.Time) bool {
	return now.Sub(created) < BadgeWindow
}

// IsRecentlyUpdated 不是新作，且 48 小时内有更新
func IsRecentlyUpdated(created, updated, now time.Time) bool {
	if IsNewWriting(created, now) {
		return false
	}
	return updated.After(created) && now.Sub(updated) < BadgeWindow
}

// WritingView 对外展示的作品，附带徽标和封面地址
type WritingView struct {
	model.Writing
	IsNew            bool    `json:"is_new"`
	IsUpdated        bool    `json:"is_updated"`
	SupportsChapters bool    `json:"supports_chapters"`
	CoverURL         *string `json:"cover_url,omitempty"`
}

func newWritingView(w model.Writing, now time.Time) WritingView {
	v := WritingView{
		Writing:          w,
		IsNew:            IsNewWriting(w.CreatedAt, now),
		IsUpdated:        IsRecentlyUpdated(w.CreatedAt, w.UpdatedAt, now),
		SupportsChapters: w.SupportsChapters(),
	}
	if w.CoverImageID != nil && *w.CoverImageID != "" {
		u := FileURL(*w.CoverImageID)
		v.CoverURL = &u
	}
	return v
}

func newWritingViews(list []model.Writing, now time.Time) []WritingView {
	out := make([]WritingView, 0, len(list))
	for _, w := range list {
		out = append(out, newWritingView(w, now))
	}
	return out
}
