package handlers

import (
	"net/http"
	"strings"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/service"
	"gogaku_suite/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdminHandler struct {
	authService service.AuthService
	cfg         *config.Config
}

func NewAdminHandler(authService service.AuthService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{authService: authService, cfg: cfg}
}

// Verify は管理者トークンを検証し、管理画面間の遷移用クッキーを発行します。
// クッキーの値は検証済みのJWTそのもの。
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	// AdminAuthMiddleware を通過済みなのでヘッダーのトークンは検証済み
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 {
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrUnauthorized)
		webutil.HandleError(w, logger, appErr)
		return
	}

	cookie := &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    parts[1],
		Path:     "/",
		Domain:   h.cfg.Admin.CookieDomain,
		MaxAge:   int(h.cfg.Admin.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(w, cookie)

	logger.Info("Admin verified, navigation cookie issued")
	webutil.RespondWithJSON(w, http.StatusOK, model.OKResponse{OK: true}, logger)
}

// ListUsers は全ユーザーの一覧です
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	responses := make([]*model.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, model.NewUserResponse(user))
	}
	webutil.RespondWithJSON(w, http.StatusOK, responses, logger)
}

// UpdateUser はユーザー情報・受講承認・課金状態の更新です
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_USER_ID", "ユーザーIDの形式が正しくありません。", "user_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	var req model.AdminUpdateUserRequest
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

	user, err := h.authService.AdminUpdateUser(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.NewUserResponse(user), logger)
}

// DeleteUser はユーザーの削除 (ソフトデリート) です
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_USER_ID", "ユーザーIDの形式が正しくありません。", "user_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.authService.AdminDeleteUser(r.Context(), userID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
