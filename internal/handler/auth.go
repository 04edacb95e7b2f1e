package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/middleware"
	"github.com/thepenbook/backend/internal/pkg/auth"
	"github.com/thepenbook/backend/internal/service"
	"k8s.io/klog/v2"
)

// AuthHandler 管理员登录
type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes login 不经过 RequireAdmin
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/admin/login", h.Login)
}

func (h *AuthHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/session", h.Session)
	router.POST("/logout", h.Logout)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.service.Login(c.Request.Context(), req.Password)
	if err != nil {
		klog.Warningf("管理员登录失败: ip=%s", c.ClientIP())
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": session.Token, "expires_at": session.ExpiresAt})
}

func (h *AuthHandler) Session(c *gin.Context) {
	claims, _ := c.Get(middleware.ContextClaimsKey)
	cl, _ := claims.(auth.Claims)
	resp := gin.H{"authenticated": true, "role": cl.Role}
	if cl.ExpiresAt != nil {
		resp["expires_at"] = cl.ExpiresAt.Time
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextTokenKey)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
