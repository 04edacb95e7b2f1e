package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
)

// ShareHandler 分享信息与分享卡片
type ShareHandler struct {
	service *service.ShareService
}

func NewShareHandler(service *service.ShareService) *ShareHandler {
	return &ShareHandler{service: service}
}

func (h *ShareHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/share/:slug", h.Info)
	router.GET("/share/:slug/card.png", h.Card)
}

func (h *ShareHandler) Info(c *gin.Context) {
	info, err := h.service.Info(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *ShareHandler) Card(c *gin.Context) {
	slug := c.Param("slug")
	data, err := h.service.CardPNG(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s-share.png", slug))
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "image/png", data)
}
