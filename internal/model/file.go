package model

import "time"

// StoredFile 上传文件元数据（封面、Logo），文件内容按 sha256 存放在磁盘上
type StoredFile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StorageID string    `json:"storage_id" gorm:"size:64;not null;uniqueIndex"`
	FileHash  string    `json:"file_hash" gorm:"size:64;not null;uniqueIndex"`
	FileName  string    `json:"file_name" gorm:"size:255"`
	FilePath  string    `json:"-" gorm:"size:500;not null"`
	MimeType  string    `json:"mime_type" gorm:"size:100;not null"`
	FileSize  int64     `json:"file_size" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (StoredFile) TableName() string {
	return "files"
}
