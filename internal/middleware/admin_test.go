package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/thepenbook/backend/internal/pkg/auth"
)

type fakeVerifier struct {
	valid string
}

func (f fakeVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if token != f.valid {
		return auth.Claims{}, errors.New("bad token")
	}
	return auth.Claims{Role: auth.RoleAdmin}, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireAdmin(fakeVerifier{valid: "good"}), func(c *gin.Context) {
		claims, _ := c.Get(ContextClaimsKey)
		c.JSON(http.StatusOK, gin.H{"role": claims.(auth.Claims).Role})
	})
	return r
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter()
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusOK},
		{"case insensitive scheme", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
