package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/thepenbook/backend/config"
	cronrunner "github.com/thepenbook/backend/internal/cron"
	"github.com/thepenbook/backend/internal/eventbus"
	"github.com/thepenbook/backend/internal/handler"
	"github.com/thepenbook/backend/internal/pkg/auth"
	"github.com/thepenbook/backend/internal/pkg/cache"
	"github.com/thepenbook/backend/internal/pkg/database"
	"github.com/thepenbook/backend/internal/repository"
	"github.com/thepenbook/backend/internal/router"
	"github.com/thepenbook/backend/internal/service"
	"github.com/thepenbook/backend/internal/subscriber"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if err := os.MkdirAll(cfg.Data.UploadDir, 0755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	store := cache.New(cfg.Cache.Type, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if rs, ok := store.(*cache.RedisStore); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("Failed to connect redis %s: %v", cfg.Cache.RedisAddr, err)
		}
		cancel()
		defer rs.Client.Close()
	}

	writingBus := eventbus.NewWritingEventBus()
	settingBus := eventbus.NewSettingEventBus()

	// 初始化 Repository
	writingRepo := repository.NewWritingRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// 初始化 Service
	writingService := service.NewWritingService(writingRepo, writingBus, store)
	chapterService := service.NewChapterService(chapterRepo, writingService)
	settingService := service.NewSettingService(settingRepo, settingBus)
	commentService := service.NewCommentService(commentRepo, writingRepo)
	fileService := service.NewFileService(fileRepo, writingRepo, settingRepo, store, cfg.Data.UploadDir, cfg.Data.MaxUploadBytes)
	shareService := service.NewShareService(writingService, settingService, store, service.ShareOptions{
		PublicURL: cfg.Server.PublicURL,
		SiteName:  cfg.Site.Name,
		Accent:    cfg.Site.Accent,
	})
	pageService := service.NewPageService(writingService, chapterService, settingService)
	authService := service.NewAuthService(
		auth.NewJWT(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL),
		auth.NewPasswordChecker(cfg.Admin.Password, cfg.Admin.PasswordHash),
		store,
	)
	autosaveService := service.NewAutosaveService(writingService, cfg.Autosave.Debounce)

	subscriber.NewWritingEventSubscriber(shareService).Register(writingBus)
	subscriber.NewSettingEventSubscriber(shareService).Register(settingBus)

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := cronrunner.New(baseCtx)
	if err := cronrunner.RegisterJobs(runner, fileService, cfg.Cron.OrphanSweep, cfg.Cron.OrphanGrace); err != nil {
		log.Fatalf("Failed to register cron jobs: %v", err)
	}
	if ms, ok := store.(*cache.MemoryStore); ok {
		if err := cronrunner.RegisterCacheSweep(runner, ms, cfg.Cron.CacheSweep); err != nil {
			log.Fatalf("Failed to register cache sweep: %v", err)
		}
	}
	runner.Start()

	// 设置路由
	r := router.Setup(cfg, authService, router.Handlers{
		Writing:  handler.NewWritingHandler(writingService),
		Chapter:  handler.NewChapterHandler(chapterService, writingService),
		Page:     handler.NewPageHandler(pageService),
		Setting:  handler.NewSettingHandler(settingService),
		Comment:  handler.NewCommentHandler(commentService),
		File:     handler.NewFileHandler(fileService),
		Share:    handler.NewShareHandler(shareService),
		Auth:     handler.NewAuthHandler(authService),
		Autosave: handler.NewAutosaveHandler(autosaveService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server starting on port %s...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-baseCtx.Done()
	klog.Infof("收到退出信号，开始关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		klog.Errorf("HTTP 服务关闭失败: %v", err)
	}
	runner.Stop()
	// 写入还在防抖窗口内的草稿
	autosaveService.Close()
	klog.Infof("服务已退出")
}
