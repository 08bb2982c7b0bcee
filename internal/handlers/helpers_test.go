package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")
	require.NoError(t, repository.Migrate(db), "failed to migrate test database")
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "GogakuSuiteTest"
	cfg.App.FreeLimit = config.DefaultFreeLimit
	cfg.JWT.SecretKey = "handler-test-secret"
	cfg.JWT.AccessTokenTTL = config.DefaultAccessTokenTTL
	cfg.Admin.CookieTTL = config.DefaultAdminCookieTTL
	return cfg
}

func createTestUser(t *testing.T, db *gorm.DB, role string, profile *model.CustomerProfile) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		UserID:       uuid.New(),
		Handle:       "user-" + uuid.NewString()[:8],
		Name:         "テストユーザー",
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: string(hashed),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)

	if profile != nil {
		profile.UserID = user.UserID
		require.NoError(t, db.Create(profile).Error)
		user.Profile = profile
	}
	return user
}

func doJSON(t *testing.T, router http.Handler, method, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// recordingStorage はアップロード呼び出しを記録するテスト用ストレージ
type recordingStorage struct {
	uploads int
}

func (s *recordingStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	s.uploads++
	io.Copy(io.Discard, body)
	return "https://storage.invalid/" + key, nil
}
