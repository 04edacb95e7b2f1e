package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
)

// FileHandler 封面与 Logo 上传
type FileHandler struct {
	service *service.FileService
}

func NewFileHandler(service *service.FileService) *FileHandler {
	return &FileHandler{service: service}
}

// RegisterRoutes 上传接口凭一次性令牌访问，不需要管理员登录
func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/files/upload/:token", h.Upload)
	router.GET("/files/:storageId/url", h.GetURL)
}

func (h *FileHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/files/upload-url", h.GenerateUploadURL)
}

func (h *FileHandler) GenerateUploadURL(c *gin.Context) {
	ticket, err := h.service.GenerateUploadURL(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// Upload 支持 multipart 的 file 字段，也支持直接以请求体上传
func (h *FileHandler) Upload(c *gin.Context) {
	var (
		body     io.Reader = c.Request.Body
		fileName           = c.Query("name")
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		body, fileName = f, fh.Filename
	}

	stored, err := h.service.Upload(c.Request.Context(), c.Param("token"), fileName, body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"storageId": stored.StorageID, "url": service.FileURL(stored.StorageID)})
}

func (h *FileHandler) GetURL(c *gin.Context) {
	url, err := h.service.GetURL(c.Request.Context(), c.Param("storageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Serve 输出文件内容，内容按哈希寻址，可长期缓存
func (h *FileHandler) Serve(c *gin.Context) {
	f, err := h.service.Get(c.Request.Context(), c.Param("storageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", f.MimeType)
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(f.FilePath)
}
