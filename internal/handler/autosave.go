package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/service"
)

// AutosaveHandler 编辑器自动保存
type AutosaveHandler struct {
	service *service.AutosaveService
}

func NewAutosaveHandler(service *service.AutosaveService) *AutosaveHandler {
	return &AutosaveHandler{service: service}
}

func (h *AutosaveHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/autosave", h.Save)
	router.POST("/autosave/:id/flush", h.Flush)
}

// Save 标题为空时不保存；首次保存立即创建草稿，之后进入防抖队列
func (h *AutosaveHandler) Save(c *gin.Context) {
	var draft service.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.service.Save(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	switch {
	case res == nil:
		c.Status(http.StatusNoContent)
	case res.Created:
		c.JSON(http.StatusCreated, res)
	case res.Pending:
		c.JSON(http.StatusAccepted, res)
	default:
		c.JSON(http.StatusOK, res)
	}
}

func (h *AutosaveHandler) Flush(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "flushed": h.service.Flush(id)})
}
