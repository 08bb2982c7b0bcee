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

type AnalyticsHandler struct {
	service service.AnalyticsService
}

func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: s}
}

// RecordEvent はセッション開始イベントの記録。採番したIDを返し、
// 以降の更新はそのIDを直接指定させる。
func (h *AnalyticsHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.PostAnalyticsEventRequest
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

	// 保存失敗は記録済みのログに任せて、クライアントには成功を返す
	resp := h.service.Record(r.Context(), &req)
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// UpdateEvent はタブ閲覧・滞在時間などの後追い更新です
func (h *AnalyticsHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_EVENT_ID", "イベントIDの形式が正しくありません。", "event_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	var req model.PutAnalyticsEventRequest
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

	h.service.Update(r.Context(), eventID, &req)
	webutil.RespondWithJSON(w, http.StatusOK, model.OKResponse{OK: true}, logger)
}

// AdminSummary は管理画面向けの集計です (?days=30)
func (h *AnalyticsHandler) AdminSummary(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			appErr := model.NewAppError("INVALID_DAYS", "daysは1〜365で指定してください。", "days", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		days = parsed
	}

	summary, err := h.service.Summary(r.Context(), days)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, summary, logger)
}
