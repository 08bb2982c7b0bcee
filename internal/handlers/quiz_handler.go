package handlers

import (
	"net/http"
	"strconv"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/service"
	"gogaku_suite/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type QuizHandler struct {
	service service.QuizService
}

func NewQuizHandler(s service.QuizService) *QuizHandler {
	return &QuizHandler{service: s}
}

// ListQuizzes はシャッフル済みの問題一覧を返します。
// 未課金ユーザーには無料枠のみ。認証は任意。
func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var userID *uuid.UUID
	if id, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		userID = &id
	}

	quizzes, err := h.service.ListQuizzes(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, quizzes, logger)
}

// GetExplanations は解説の上書き一覧を返します (公開)
func (h *QuizHandler) GetExplanations(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	resp, err := h.service.GetOverrides(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// PutExplanation は管理者による解説の上書き保存です
func (h *QuizHandler) PutExplanation(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	quizID, err := strconv.Atoi(chi.URLParam(r, "quizID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_QUIZ_ID", "問題IDの形式が正しくありません。", "quiz_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	var req model.PutExplanationRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		webutil.HandleValidationError(w, logger, err)
		return
	}

	if _, err := h.service.UpsertOverride(r.Context(), quizID, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.SuccessResponse{Success: true}, logger)
}
