package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
)

// PageHandler 首页与阅读页聚合接口
type PageHandler struct {
	service *service.PageService
}

func NewPageHandler(service *service.PageService) *PageHandler {
	return &PageHandler{service: service}
}

func (h *PageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/home", h.Home)
	router.GET("/read/:slug", h.Read)
}

func (h *PageHandler) Home(c *gin.Context) {
	page, err := h.service.Home(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Read 阅读页，浏览量按客户端 IP 去重
func (h *PageHandler) Read(c *gin.Context) {
	var chapter *int
	if raw := c.Query("chapter"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, service.ErrChapterNotFound)
			return
		}
		chapter = &n
	}
	page, err := h.service.Read(c.Request.Context(), c.Param("slug"), chapter, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
