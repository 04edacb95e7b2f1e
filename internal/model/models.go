package model

import (
	"time"
)

// Writing 作品（可选拆分为章节）
type Writing struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Content      string    `json:"content" gorm:"type:text"`
	Slug         string    `json:"slug" gorm:"size:255;not null;uniqueIndex:idx_writings_slug"`
	Published    bool      `json:"published" gorm:"default:false;index"`
	Category     *string   `json:"category,omitempty" gorm:"size:100;index:idx_writings_category"`
	ColorTag     *string   `json:"color_tag,omitempty" gorm:"size:16"`
	CoverImageID *string   `json:"cover_image_id,omitempty" gorm:"size:64"`
	Views        int64     `json:"views" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Chapters     []Chapter `json:"chapters,omitempty" gorm:"foreignKey:WritingID"`
}

// TableName 指定表名
func (Writing) TableName() string {
	return "writings"
}

// Chapter 章节，ChapterNumber 在同一作品内从 1 开始连续编号
type Chapter struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	WritingID     uint      `json:"writing_id" gorm:"not null;index:idx_chapters_writing"`
	Title         string    `json:"title" gorm:"size:255;not null"`
	Content       string    `json:"content" gorm:"type:text"`
	ChapterNumber int       `json:"chapter_number" gorm:"not null;default:1"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// ChapteredCategories 支持章节的分类
var ChapteredCategories = []string{"Novel", "Short Stories"}

// SupportsChapters 判断作品分类是否支持章节
func (w *Writing) SupportsChapters() bool {
	if w.Category == nil {
		return false
	}
	for _, c := range ChapteredCategories {
		if *w.Category == c {
			return true
		}
	}
	return false
}
