package handlers

import (
	"io"
	"net/http"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/service"
	"gogaku_suite/internal/webutil"
)

// Stripeのイベントペイロード上限 (公式推奨値)
const webhookMaxBodyBytes = 65536

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

// CreateCheckout は全問アクセス解放の決済セッションを作成します
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.CreateCheckoutSession(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// Webhook は決済ゲートウェイからの通知を受けます。
// 署名検証に生のボディが必要なのでJSONデコードより先に読み切る。
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookMaxBodyBytes))
	if err != nil {
		logger.Warn("Failed to read webhook payload", "error", err)
		appErr := model.NewAppError("INVALID_PAYLOAD", "リクエストボディの読み込みに失敗しました。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.OKResponse{OK: true}, logger)
}
