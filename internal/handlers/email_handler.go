package handlers

import (
	"net/http"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/service"
	"gogaku_suite/internal/webutil"
)

type EmailHandler struct {
	service service.EmailService
}

func NewEmailHandler(s service.EmailService) *EmailHandler {
	return &EmailHandler{service: s}
}

// AdminSendEmail はフィードバックメールの登録。
// scheduled_at があれば予約、なければ即時送信。
func (h *EmailHandler) AdminSendEmail(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.PostEmailRequest
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

	email, err := h.service.Enqueue(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, email, logger)
}

// RunDigest は予約メールの送信ジョブ。外部スケジューラから叩かれる。
func (h *EmailHandler) RunDigest(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	result, err := h.service.RunDigest(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, result, logger)
}
