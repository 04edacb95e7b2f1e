package service

import "errors"

var (
	ErrWritingNotFound       = errors.New("writing not found")
	ErrChapterNotFound       = errors.New("chapter not found")
	ErrInvalidTitle          = errors.New("title is required")
	ErrInvalidColorTag       = errors.New("color tag must be #rgb or #rrggbb")
	ErrChapterMoveOutOfRange = errors.New("chapter cannot move further")
	ErrInvalidDirection      = errors.New("direction must be up or down")
	ErrInvalidComment        = errors.New("comment text must be 1-2000 characters")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrInvalidCategory       = errors.New("category name is required")
	ErrInvalidSettingKey     = errors.New("setting key is required")
	ErrUploadTokenInvalid    = errors.New("upload token is invalid or expired")
	ErrNotAnImage            = errors.New("only image uploads are accepted")
	ErrFileTooLarge          = errors.New("file exceeds upload limit")
	ErrFileNotFound          = errors.New("file not found")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrUnauthorized          = errors.New("unauthorized")
)
