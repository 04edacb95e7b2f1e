package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/internal/pkg/auth"
	"k8s.io/klog/v2"
)

const (
	ContextClaimsKey = "admin_claims"
	ContextTokenKey  = "admin_token"
)

// TokenVerifier 校验管理员令牌
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Claims, error)
}

// RequireAdmin 要求请求携带有效的 Bearer 令牌
func RequireAdmin(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			klog.V(6).Infof("管理员令牌无效: path=%s, err=%v", c.FullPath(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextClaimsKey, claims)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

func BearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
