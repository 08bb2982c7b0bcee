package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gogaku_suite/internal/catalog"
	"gogaku_suite/internal/handlers"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"
	"gogaku_suite/internal/service"
)

func newOndokuTestRouter(t *testing.T, db *gorm.DB, storage service.Storage, user *model.User) http.Handler {
	t.Helper()
	cfg := testConfig()
	svc := service.NewOndokuService(db, repository.NewGormOndokuRepository(), repository.NewGormUserRepository(), storage, cfg)
	handler := handlers.NewOndokuHandler(svc)

	router := chi.NewRouter()
	router.Use(middleware.SetTestUser(user.UserID, user.Role))
	router.Post("/api/ondoku/submissions", handler.Submit)
	router.Get("/api/ondoku/submissions", handler.ListMySubmissions)
	router.Post("/api/ondoku/upload", handler.UploadAudio)
	router.Get("/api/ondoku/passages", handler.GetPassages)
	return router
}

func buildMultipartAudio(t *testing.T, fieldValues map[string]string, filename string, size int) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fieldValues {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestOndokuHandler_Submit_RangeValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, model.RoleStudent, &model.CustomerProfile{Plan: "free", OndokuApproved: true})
	router := newOndokuTestRouter(t, db, &recordingStorage{}, user)

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			name:       "正常系: 範囲内の座標",
			body:       map[string]interface{}{"period_index": 7, "item_index": 9, "content": "本文"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "異常系: period_index が範囲外 (8)",
			body:       map[string]interface{}{"period_index": 8, "item_index": 0, "content": "本文"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: item_index が範囲外 (10)",
			body:       map[string]interface{}{"period_index": 0, "item_index": 10, "content": "本文"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: 負の period_index",
			body:       map[string]interface{}{"period_index": -1, "item_index": 0, "content": "本文"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: content なし",
			body:       map[string]interface{}{"period_index": 0, "item_index": 0},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.body)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/ondoku/submissions", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	// 範囲外のリクエストで行が増えていないこと
	var count int64
	require.NoError(t, db.Model(&model.OndokuSubmission{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOndokuHandler_Submit_DoubleSubmitShowsLatest(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, model.RoleStudent, &model.CustomerProfile{Plan: "free", OndokuApproved: true})
	router := newOndokuTestRouter(t, db, &recordingStorage{}, user)

	post := func(content string) {
		payload, err := json.Marshal(map[string]interface{}{
			"period_index": 0, "item_index": 0, "content": content,
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/ondoku/submissions", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	post("最初の内容")
	post("最新の内容")

	req := httptest.NewRequest(http.MethodGet, "/api/ondoku/submissions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var submissions []model.OndokuSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submissions))
	require.Len(t, submissions, 1, "同一座標の提出は1行に収束する")
	assert.Equal(t, "最新の内容", submissions[0].Content)
}

func TestOndokuHandler_UploadAudio_SizeLimit(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, model.RoleStudent, &model.CustomerProfile{Plan: "free", OndokuApproved: true})
	storage := &recordingStorage{}
	router := newOndokuTestRouter(t, db, storage, user)

	t.Run("60MBのファイルは400で拒否され、ストレージに書かれない", func(t *testing.T) {
		body, contentType := buildMultipartAudio(t, map[string]string{
			"period_index": "0", "item_index": "0",
		}, "big.mp3", 60<<20)

		req := httptest.NewRequest(http.MethodPost, "/api/ondoku/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ファイルサイズは50MB以下にしてください")
		assert.Equal(t, 0, storage.uploads, "サイズ超過時はストレージへ書き込まない")
	})

	t.Run("上限内のファイルは受理される", func(t *testing.T) {
		body, contentType := buildMultipartAudio(t, map[string]string{
			"period_index": "0", "item_index": "0",
		}, "ok.mp3", 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/api/ondoku/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, storage.uploads)

		var resp model.UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.URL, ".mp3")
	})

	t.Run("許可外の拡張子は400", func(t *testing.T) {
		body, contentType := buildMultipartAudio(t, map[string]string{
			"period_index": "0", "item_index": "0",
		}, "bad.exe", 1024)

		req := httptest.NewRequest(http.MethodPost, "/api/ondoku/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOndokuHandler_GetPassages(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, model.RoleStudent, nil)
	router := newOndokuTestRouter(t, db, &recordingStorage{}, user)

	req := httptest.NewRequest(http.MethodGet, "/api/ondoku/passages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var passages []catalog.OndokuPassage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &passages))
	require.Len(t, passages, 80, "8期 x 10課題")
	assert.Equal(t, 0, passages[0].PeriodIndex)
	assert.Equal(t, "自己紹介", passages[0].Title)
	assert.Equal(t, 7, passages[79].PeriodIndex)
	assert.Equal(t, 9, passages[79].ItemIndex)
}
