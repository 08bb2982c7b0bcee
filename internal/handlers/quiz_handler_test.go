package handlers_test

import (
	"encoding/json"
	"net/http"
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

func newQuizTestRouter(t *testing.T, db *gorm.DB) http.Handler {
	t.Helper()
	svc := service.NewQuizService(db, repository.NewGormOverrideRepository(), repository.NewGormUserRepository(), testConfig())
	h := handlers.NewQuizHandler(svc)

	router := chi.NewRouter()
	router.Put("/api/admin/explanations/{quizID}", h.PutExplanation)
	return router
}

func TestQuizHandler_PutExplanation(t *testing.T) {
	db := setupTestDB(t)
	router := newQuizTestRouter(t, db)

	t.Run("正常系: success:true を返し、上書きが保存される", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/admin/explanations/1", map[string]interface{}{
			"explanation": "差し替えた解説",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp model.SuccessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		var stored model.QuizExplanationOverride
		require.NoError(t, db.Where("quiz_id = ?", 1).First(&stored).Error)
		assert.Equal(t, "差し替えた解説", stored.Explanation)
	})

	t.Run("異常系: 存在しない問題IDは404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/admin/explanations/99999", map[string]interface{}{
			"explanation": "x",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
