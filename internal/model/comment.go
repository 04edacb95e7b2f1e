package model

import "time"

// Comment 读者评论
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	WritingID uint      `json:"writing_id" gorm:"not null;index:idx_comments_writing"`
	Name      string    `json:"name" gorm:"size:80;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}
