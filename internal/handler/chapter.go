package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	service  *service.ChapterService
	writings *service.WritingService
}

func NewChapterHandler(chapters *service.ChapterService, writings *service.WritingService) *ChapterHandler {
	return &ChapterHandler{service: chapters, writings: writings}
}

// RegisterRoutes 注册公开路由，只返回已发布作品的已发布章节
func (h *ChapterHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/writings/:id/chapters", h.ListPublished)
	router.GET("/writings/:id/chapters/:number", h.GetByNumber)
}

// RegisterAdminRoutes 注册管理路由
func (h *ChapterHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/writings/:id/chapters", h.ListAll)
	router.POST("/writings/:id/chapters", h.Create)
	router.PATCH("/chapters/:id", h.Update)
	router.DELETE("/chapters/:id", h.Delete)
	router.POST("/chapters/:id/move", h.Move)
}

// MoveChapterRequest 调整章节顺序请求
type MoveChapterRequest struct {
	Direction string `json:"direction" binding:"required"` // up/down
}

func (h *ChapterHandler) publishedWriting(c *gin.Context) (uint, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return 0, false
	}
	w, err := h.writings.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	if !w.Published {
		respondError(c, service.ErrWritingNotFound)
		return 0, false
	}
	return id, true
}

func (h *ChapterHandler) ListPublished(c *gin.Context) {
	id, ok := h.publishedWriting(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), id, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ChapterHandler) GetByNumber(c *gin.Context) {
	id, ok := h.publishedWriting(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid number"})
		return
	}
	ch, err := h.service.GetByNumber(c.Request.Context(), id, number)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ch.Published {
		respondError(c, service.ErrChapterNotFound)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *ChapterHandler) ListAll(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), id, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ChapterHandler) Create(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ch, err := h.service.Create(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *ChapterHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ch, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *ChapterHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *ChapterHandler) Move(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req MoveChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ch, err := h.service.Move(c.Request.Context(), id, req.Direction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}
