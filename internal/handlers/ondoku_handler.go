package handlers

import (
	"net/http"
	"strconv"

	"gogaku_suite/internal/catalog"
	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/service"
	"gogaku_suite/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OndokuHandler struct {
	service service.OndokuService
}

func NewOndokuHandler(s service.OndokuService) *OndokuHandler {
	return &OndokuHandler{service: s}
}

// Submit は音読課題の提出 ((user, period, item) の組で上書き)
func (h *OndokuHandler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PostOndokuSubmissionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		logger.Warn("Validation failed for ondoku submission", "error", err)
		webutil.HandleValidationError(w, logger, err)
		return
	}

	submission, err := h.service.Submit(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, submission, logger)
}

// ListMySubmissions は自分の提出一覧を返します
func (h *OndokuHandler) ListMySubmissions(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	submissions, err := h.service.ListMySubmissions(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, submissions, logger)
}

// UploadAudio は録音ファイルのアップロード。
// サイズ上限を超えるリクエストはストレージに触る前に弾く。
func (h *OndokuHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	// マルチパートのヘッダ分として1MBの余裕を持たせる
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxAudioUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Warn("Multipart parse failed (likely over size limit)", "error", err)
		appErr := model.NewAppError("FILE_TOO_LARGE", "ファイルサイズは50MB以下にしてください", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	periodIndex, err1 := strconv.Atoi(r.FormValue("period_index"))
	itemIndex, err2 := strconv.Atoi(r.FormValue("item_index"))
	if err1 != nil || err2 != nil ||
		periodIndex < 0 || periodIndex > config.OndokuPeriodMax ||
		itemIndex < 0 || itemIndex > config.OndokuItemMax {
		appErr := model.NewAppError("INVALID_COORDINATES", "期・課題番号の指定が正しくありません。", "period_index,item_index", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		appErr := model.NewAppError("FILE_REQUIRED", "ファイルが添付されていません。", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	defer file.Close()

	if header.Size > config.MaxAudioUploadBytes {
		logger.Warn("Audio upload rejected: too large", "size", header.Size)
		appErr := model.NewAppError("FILE_TOO_LARGE", "ファイルサイズは50MB以下にしてください", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	url, err := h.service.UploadAudio(r.Context(), userID, periodIndex, itemIndex, header.Filename, file)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.UploadResponse{URL: url}, logger)
}

// GetPassages は音読課題の静的カタログを返します
func (h *OndokuHandler) GetPassages(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	webutil.RespondWithJSON(w, http.StatusOK, catalog.OndokuCatalog(), logger)
}

// GetVisibility は解決済みの公開状態一覧を返します
func (h *OndokuHandler) GetVisibility(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	items, err := h.service.ResolveVisibility(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, items, logger)
}

// GetModelAudio はお手本音声の一覧を返します
func (h *OndokuHandler) GetModelAudio(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	assets, err := h.service.ListModelAudio(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, assets, logger)
}

// --- 管理者向け ---

func (h *OndokuHandler) AdminListSubmissions(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	submissions, err := h.service.AdminListSubmissions(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, submissions, logger)
}

// AdminUpdateSubmission はステータス・添削の更新です
func (h *OndokuHandler) AdminUpdateSubmission(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	submissionID, err := uuid.Parse(chi.URLParam(r, "submissionID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_SUBMISSION_ID", "提出IDの形式が正しくありません。", "submission_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	var req model.PutOndokuAdminRequest
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

	submission, err := h.service.AdminUpdateSubmission(r.Context(), submissionID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, submission, logger)
}

func (h *OndokuHandler) AdminPutVisibility(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.PutVisibilityRequest
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

	if err := h.service.AdminSetVisibility(r.Context(), &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.OKResponse{OK: true}, logger)
}

func (h *OndokuHandler) AdminPutUserVisibility(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.PutUserVisibilityRequest
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

	if err := h.service.AdminSetUserVisibility(r.Context(), &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, model.OKResponse{OK: true}, logger)
}

// AdminUploadModelAudio はお手本音声のアップロード (level, period, speed で上書き)
func (h *OndokuHandler) AdminUploadModelAudio(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxAudioUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Warn("Multipart parse failed (likely over size limit)", "error", err)
		appErr := model.NewAppError("FILE_TOO_LARGE", "ファイルサイズは50MB以下にしてください", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	level := r.FormValue("level")
	speed := r.FormValue("speed")
	period, err := strconv.Atoi(r.FormValue("period"))
	if level == "" || err != nil {
		appErr := model.NewAppError("INVALID_COORDINATES", "level・period の指定が正しくありません。", "level,period", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		appErr := model.NewAppError("FILE_REQUIRED", "ファイルが添付されていません。", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	defer file.Close()

	if header.Size > config.MaxAudioUploadBytes {
		logger.Warn("Model audio upload rejected: too large", "size", header.Size)
		appErr := model.NewAppError("FILE_TOO_LARGE", "ファイルサイズは50MB以下にしてください", "file", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	asset, err := h.service.AdminUploadModelAudio(r.Context(), level, period, speed, header.Filename, file)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, asset, logger)
}
