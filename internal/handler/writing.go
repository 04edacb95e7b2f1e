package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
)

// WritingHandler 作品处理器
type WritingHandler struct {
	service *service.WritingService
}

func NewWritingHandler(service *service.WritingService) *WritingHandler {
	return &WritingHandler{service: service}
}

// RegisterRoutes 注册公开路由
func (h *WritingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/writings", h.ListPublished)
	router.GET("/writings/slug/:slug", h.GetBySlug)
}

// RegisterAdminRoutes 注册管理路由
func (h *WritingHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/writings", h.ListAll)
	router.POST("/writings", h.Create)
	router.GET("/writings/:id", h.Get)
	router.PATCH("/writings/:id", h.Update)
	router.DELETE("/writings/:id", h.Delete)
	router.POST("/writings/:id/toggle-publish", h.TogglePublished)
}

// ListPublished 已发布作品列表，可按 ?category= 过滤
func (h *WritingHandler) ListPublished(c *gin.Context) {
	var (
		list []service.WritingView
		err  error
	)
	if category := c.Query("category"); category != "" {
		list, err = h.service.ListByCategory(c.Request.Context(), category)
	} else {
		list, err = h.service.ListPublished(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetBySlug 未发布作品对读者不可见
func (h *WritingHandler) GetBySlug(c *gin.Context) {
	w, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !w.Published {
		respondError(c, service.ErrWritingNotFound)
		return
	}
	c.JSON(http.StatusOK, h.service.View(*w))
}

func (h *WritingHandler) ListAll(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WritingHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	w, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.View(*w))
}

func (h *WritingHandler) Create(c *gin.Context) {
	var req service.CreateWritingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.service.View(*w))
}

func (h *WritingHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateWritingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.View(*w))
}

func (h *WritingHandler) Delete(c *gin.Context) {
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

func (h *WritingHandler) TogglePublished(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	w, err := h.service.TogglePublished(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.View(*w))
}
