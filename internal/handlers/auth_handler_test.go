package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gogaku_suite/internal/handlers"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"
	"gogaku_suite/internal/service"
)

func newAuthTestRouter(t *testing.T, db *gorm.DB) http.Handler {
	t.Helper()
	authService := service.NewAuthService(db, repository.NewGormUserRepository(), testConfig())
	authHandler := handlers.NewAuthHandler(authService)

	router := chi.NewRouter()
	router.Post("/api/auth/register", authHandler.Register)
	router.Post("/api/auth/login", authHandler.Login)
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, router, http.MethodPost, path, body)
}

func TestAuthHandler_Register(t *testing.T) {
	db := setupTestDB(t)
	router := newAuthTestRouter(t, db)

	t.Run("正常系: 登録したメールアドレスがレスポンスに返る", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/register", map[string]interface{}{
			"id": "abc", "password": "secret1", "email": "a@b.com", "name": "Test",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp model.UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "a@b.com", resp.Email)
		assert.Equal(t, "abc", resp.Handle)
		assert.Equal(t, model.RoleStudent, resp.Role)
		assert.NotEqual(t, "", resp.UserID.String())
	})

	t.Run("異常系: メールアドレス重複は409", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/register", map[string]interface{}{
			"id": "abc2", "password": "secret1", "email": "a@b.com", "name": "Test2",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "DUPLICATE_EMAIL")
	})

	t.Run("異常系: メールアドレス形式不正は400", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/register", map[string]interface{}{
			"id": "abc3", "password": "secret1", "email": "not-an-email", "name": "Test3",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	db := setupTestDB(t)
	router := newAuthTestRouter(t, db)

	rec := postJSON(t, router, "/api/auth/register", map[string]interface{}{
		"id": "login-user", "password": "secret1", "email": "login@b.com", "name": "Login",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("正常系: トークンが返る", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/login", map[string]interface{}{
			"email": "login@b.com", "password": "secret1",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp model.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("異常系: パスワード不一致は401", func(t *testing.T) {
		rec := postJSON(t, router, "/api/auth/login", map[string]interface{}{
			"email": "login@b.com", "password": "wrong-pass",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "AUTHENTICATION_FAILED")
	})
}
