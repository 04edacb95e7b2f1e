package embed

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

//go:embed ui/dist/*
var embeddedFiles embed.FS

// FrontendFS 前端构建产物，根目录即 dist
func FrontendFS() fs.FS {
	sub, err := fs.Sub(embeddedFiles, "ui/dist")
	if err != nil {
		return embeddedFiles
	}
	return sub
}

// SetupRouter 设置前端静态文件路由，必须在 API 路由之后调用
func SetupRouter(r *gin.Engine) {
	frontend := FrontendFS()
	static := r.Group("", gzip.Gzip(gzip.BestCompression))

	if assets, err := fs.Sub(frontend, "assets"); err == nil {
		static.GET("/assets/*filepath", gin.WrapH(http.StripPrefix("/assets", http.FileServer(http.FS(assets)))))
	}

	static.GET("/favicon.ico", func(c *gin.Context) {
		favicon, err := fs.ReadFile(frontend, "favicon.ico")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/x-icon", favicon)
	})

	// 阅读页、后台等前端路由统一返回 index.html
	r.NoRoute(gzip.Gzip(gzip.BestCompression), func(c *gin.Context) {
		if isBackendPath(c.Request.URL.Path) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		indexHTML, err := fs.ReadFile(frontend, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "Failed to load index.html")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
}

func isBackendPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/files/")
}
