package handlers

import (
	"net/http"
	"strconv"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/service"
	"gogaku_suite/internal/webutil"
)

type ContentHandler struct {
	service service.ContentService
}

func NewContentHandler(s service.ContentService) *ContentHandler {
	return &ContentHandler{service: s}
}

// GetPost は上流CMSの記事をタイトル検索または記事IDで取得します
// (?title=... または ?post_id=...)
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	title := r.URL.Query().Get("title")
	postID := 0
	if raw := r.URL.Query().Get("post_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			appErr := model.NewAppError("INVALID_POST_ID", "記事IDの形式が正しくありません。", "post_id", model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}
		postID = parsed
	}

	if title == "" && postID == 0 {
		appErr := model.NewAppError("MISSING_QUERY", "title か post_id のいずれかを指定してください。", "title", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	resp, err := h.service.FetchPost(r.Context(), title, postID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}
