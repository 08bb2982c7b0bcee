package handlers

import (
	"net/http"

	"gogaku_suite/internal/catalog"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/service"
	"gogaku_suite/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type WritingHandler struct {
	service service.WritingService
}

func NewWritingHandler(s service.WritingService) *WritingHandler {
	return &WritingHandler{service: s}
}

// ListExamples は作文アプリの例題プロンプト一覧を返します
func (h *WritingHandler) ListExamples(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	webutil.RespondWithJSON(w, http.StatusOK, catalog.WritingExamples, logger)
}

// ListAssignments は課題一覧を返します (受講者向け)
func (h *WritingHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	assignments, err := h.service.ListAssignments(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, assignments, logger)
}

// Submit は課題への作文提出 (同一課題への再提出は上書き)
func (h *WritingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.PostWritingSubmissionRequest
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

	submission, err := h.service.SubmitWriting(r.Context(), userID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, submission, logger)
}

// ListMySubmissions は自分の提出一覧を返します
func (h *WritingHandler) ListMySubmissions(w http.ResponseWriter, r *http.Request) {
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

// --- 管理者向け ---

func (h *WritingHandler) AdminCreateAssignment(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.PostAssignmentRequest
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

	assignment, err := h.service.CreateAssignment(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusCreated, assignment, logger)
}

func (h *WritingHandler) AdminUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	assignmentID, err := uuid.Parse(chi.URLParam(r, "assignmentID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_ASSIGNMENT_ID", "課題IDの形式が正しくありません。", "assignment_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	var req model.PutAssignmentRequest
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

	assignment, err := h.service.UpdateAssignment(r.Context(), assignmentID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, assignment, logger)
}

func (h *WritingHandler) AdminDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	assignmentID, err := uuid.Parse(chi.URLParam(r, "assignmentID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_ASSIGNMENT_ID", "課題IDの形式が正しくありません。", "assignment_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.service.DeleteAssignment(r.Context(), assignmentID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WritingHandler) AdminListSubmissions(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	submissions, err := h.service.ListAllSubmissions(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, submissions, logger)
}

// AdminAttachFeedback は提出への添削コメント付与です
func (h *WritingHandler) AdminAttachFeedback(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	submissionID, err := uuid.Parse(chi.URLParam(r, "submissionID"))
	if err != nil {
		appErr := model.NewAppError("INVALID_SUBMISSION_ID", "提出IDの形式が正しくありません。", "submission_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	var req model.PutWritingFeedbackRequest
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

	submission, err := h.service.AttachFeedback(r.Context(), submissionID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, submission, logger)
}
