package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thepenbook/backend/config"
	"github.com/thepenbook/backend/internal/embed"
	"github.com/thepenbook/backend/internal/handler"
	"github.com/thepenbook/backend/internal/middleware"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Writing  *handler.WritingHandler
	Chapter  *handler.ChapterHandler
	Page     *handler.PageHandler
	Setting  *handler.SettingHandler
	Comment  *handler.CommentHandler
	File     *handler.FileHandler
	Share    *handler.ShareHandler
	Auth     *handler.AuthHandler
	Autosave *handler.AutosaveHandler
}

func Setup(cfg *config.Config, verifier middleware.TokenVerifier, h Handlers) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		// 未配置来源时放开，但凭证模式下不能用 *
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		h.Writing.RegisterRoutes(api)
		h.Chapter.RegisterRoutes(api)
		h.Page.RegisterRoutes(api)
		h.Setting.RegisterRoutes(api)
		h.Comment.RegisterRoutes(api)
		h.File.RegisterRoutes(api)
		h.Share.RegisterRoutes(api)
		h.Auth.RegisterRoutes(api)

		admin := api.Group("/admin", middleware.RequireAdmin(verifier))
		{
			h.Auth.RegisterAdminRoutes(admin)
			h.Writing.RegisterAdminRoutes(admin)
			h.Chapter.RegisterAdminRoutes(admin)
			h.Setting.RegisterAdminRoutes(admin)
			h.Comment.RegisterAdminRoutes(admin)
			h.File.RegisterAdminRoutes(admin)
			h.Autosave.RegisterAdminRoutes(admin)
		}
	}

	r.GET("/files/:storageId", h.File.Serve)

	// 前端静态文件，必须在 API 路由之后设置
	embed.SetupRouter(r)

	return r
}
