package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/handlers"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"
	"gogaku_suite/internal/service"
)

// newAdminTestRouter は本番同様に AdminAuthMiddleware を通した管理者ルートを作る
func newAdminTestRouter(t *testing.T, db *gorm.DB, cfg *config.Config) (http.Handler, service.AuthService) {
	t.Helper()
	userRepo := repository.NewGormUserRepository()
	authService := service.NewAuthService(db, userRepo, cfg)
	ondokuService := service.NewOndokuService(db, repository.NewGormOndokuRepository(), userRepo, &service.LogStorage{}, cfg)

	adminHandler := handlers.NewAdminHandler(authService, cfg)
	ondokuHandler := handlers.NewOndokuHandler(ondokuService)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuthMiddleware(cfg))
		r.Post("/api/admin/verify", adminHandler.Verify)
		r.Get("/api/admin/users", adminHandler.ListUsers)
		r.Put("/api/admin/ondoku/visibility", ondokuHandler.AdminPutVisibility)
	})
	return router, authService
}

func TestAdminAuth_RejectsWithoutToken(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router, _ := newAdminTestRouter(t, db, cfg)

	payload, err := json.Marshal(map[string]interface{}{
		"period_index": 0, "item_index": 0, "visible_from": time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/ondoku/visibility", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")

	// 副作用がないこと: 公開設定の行は作られていない
	var count int64
	require.NoError(t, db.Model(&model.VisibilityWindow{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAdminAuth_RejectsStudentToken(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router, authService := newAdminTestRouter(t, db, cfg)

	student := createTestUser(t, db, model.RoleStudent, nil)
	token, err := authService.IssueToken(student)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_AcceptsAdminToken(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router, authService := newAdminTestRouter(t, db, cfg)

	admin := createTestUser(t, db, model.RoleAdmin, nil)
	token, err := authService.IssueToken(admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminVerify_SetsNavigationCookie(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router, authService := newAdminTestRouter(t, db, cfg)

	admin := createTestUser(t, db, model.RoleAdmin, nil)
	token, err := authService.IssueToken(admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	var adminCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.AdminCookieName {
			adminCookie = c
		}
	}
	require.NotNil(t, adminCookie, "管理画面遷移用クッキーが設定される")
	assert.Equal(t, token, adminCookie.Value)
	assert.True(t, adminCookie.HttpOnly)
	assert.InDelta(t, cfg.Admin.CookieTTL.Seconds(), float64(adminCookie.MaxAge), 1)
}

func TestAdminAuth_AcceptsCookieFallback(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router, authService := newAdminTestRouter(t, db, cfg)

	admin := createTestUser(t, db, model.RoleAdmin, nil)
	token, err := authService.IssueToken(admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminCookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
