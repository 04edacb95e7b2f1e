package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/thepenbook/backend/internal/middleware"
	"github.com/thepenbook/backend/internal/pkg/auth"
	"github.com/thepenbook/backend/internal/pkg/cache"
	"github.com/thepenbook/backend/internal/pkg/database"
	"github.com/thepenbook/backend/internal/repository"
	"github.com/thepenbook/backend/internal/service"
	"gorm.io/gorm"
)

const testPassword = "letmein"

type testServer struct {
	t        *testing.T
	engine   *gin.Engine
	writings *service.WritingService
	chapters *service.ChapterService
	settings *service.SettingService
	autosave *service.AutosaveService
	token    string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	store := cache.NewMemoryStore()
	writingRepo := repository.NewWritingRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	writings := service.NewWritingService(writingRepo, nil, store)
	chapters := service.NewChapterService(repository.NewChapterRepository(db), writings)
	settings := service.NewSettingService(settingRepo, nil)
	comments := service.NewCommentService(repository.NewCommentRepository(db), writingRepo)
	files := service.NewFileService(repository.NewFileRepository(db), writingRepo, settingRepo, store, t.TempDir(), 1<<20)
	share := service.NewShareService(writings, settings, store, service.ShareOptions{PublicURL: "https://pen.example", SiteName: "The Pen Book"})
	authSvc := service.NewAuthService(auth.NewJWT("test-secret", time.Hour), auth.NewPasswordChecker(testPassword, ""), store)
	autosave := service.NewAutosaveService(writings, time.Hour)
	t.Cleanup(autosave.Close)

	r := gin.New()
	api := r.Group("/api")
	NewWritingHandler(writings).RegisterRoutes(api)
	NewChapterHandler(chapters, writings).RegisterRoutes(api)
	NewPageHandler(service.NewPageService(writings, chapters, settings)).RegisterRoutes(api)
	NewSettingHandler(settings).RegisterRoutes(api)
	NewCommentHandler(comments).RegisterRoutes(api)
	fileHandler := NewFileHandler(files)
	fileHandler.RegisterRoutes(api)
	NewShareHandler(share).RegisterRoutes(api)
	authHandler := NewAuthHandler(authSvc)
	authHandler.RegisterRoutes(api)

	admin := api.Group("/admin", middleware.RequireAdmin(authSvc))
	authHandler.RegisterAdminRoutes(admin)
	NewWritingHandler(writings).RegisterAdminRoutes(admin)
	NewChapterHandler(chapters, writings).RegisterAdminRoutes(admin)
	NewSettingHandler(settings).RegisterAdminRoutes(admin)
	NewCommentHandler(comments).RegisterAdminRoutes(admin)
	fileHandler.RegisterAdminRoutes(admin)
	NewAutosaveHandler(autosave).RegisterAdminRoutes(admin)
	r.GET("/files/:storageId", fileHandler.Serve)

	return &testServer{t: t, engine: r, writings: writings, chapters: chapters, settings: settings, autosave: autosave}
}

// login 获取管理员令牌，后续 admin 请求自动携带
func (s *testServer) login() {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/admin/login", map[string]string{"password": testPassword})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	s.decode(w, &resp)
	s.token = resp.Token
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) decode(w *httptest.ResponseRecorder, v any) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
