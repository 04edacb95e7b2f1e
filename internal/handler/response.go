package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
	"k8s.io/klog/v2"
)

// errorStatus 业务错误到 HTTP 状态码
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrWritingNotFound),
		errors.Is(err, service.ErrChapterNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidColorTag),
		errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrInvalidComment),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidSettingKey):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrChapterMoveOutOfRange):
		return http.StatusConflict
	case errors.Is(err, service.ErrUploadTokenInvalid):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotAnImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidPassword), errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError 内部错误只记录日志，不把细节返回给客户端
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		klog.Errorf("%s %s 失败: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	klog.V(6).Infof("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
