package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gogaku_suite/internal/catalog"
	"gogaku_suite/internal/handlers"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"
	"gogaku_suite/internal/service"
)

func TestWritingHandler_ListExamples(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, model.RoleStudent, nil)

	svc := service.NewWritingService(db, repository.NewGormWritingRepository(), repository.NewGormUserRepository())
	handler := handlers.NewWritingHandler(svc)

	router := chi.NewRouter()
	router.Use(middleware.SetTestUser(user.UserID, user.Role))
	router.Get("/api/writing/examples", handler.ListExamples)

	req := httptest.NewRequest(http.MethodGet, "/api/writing/examples", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var examples []catalog.WritingExample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &examples))
	require.Len(t, examples, len(catalog.WritingExamples))
	assert.Equal(t, "자기소개", examples[0].TitleKo)
	assert.Equal(t, "自己紹介", examples[0].TitleJa)
}
