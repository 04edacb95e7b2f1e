package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
)

// SettingHandler 站点设置、分类与颜色预设
type SettingHandler struct {
	service *service.SettingService
}

func NewSettingHandler(service *service.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

func (h *SettingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/settings", h.GetAll)
	router.GET("/settings/:key", h.Get)
	router.GET("/categories", h.Categories)
	router.GET("/color-presets", h.ColorPresets)
}

func (h *SettingHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.PUT("/settings/:key", h.Set)
	router.POST("/categories", h.AddCategory)
}

// SetSettingRequest 设置值请求
type SetSettingRequest struct {
	Value string `json:"value"`
}

// AddCategoryRequest 新增分类请求
type AddCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *SettingHandler) GetAll(c *gin.Context) {
	all, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// Get 不存在的键返回 {"value": null}
func (h *SettingHandler) Get(c *gin.Context) {
	v, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": v})
}

func (h *SettingHandler) Set(c *gin.Context) {
	var req SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Set(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": req.Value})
}

func (h *SettingHandler) Categories(c *gin.Context) {
	list, err := h.service.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SettingHandler) AddCategory(c *gin.Context) {
	var req AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := h.service.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SettingHandler) ColorPresets(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ColorPresets())
}
