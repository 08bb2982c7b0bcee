package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 音声アップロードで受け付ける拡張子
var allowedAudioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

type OndokuService interface {
	Submit(ctx context.Context, userID uuid.UUID, req *model.PostOndokuSubmissionRequest) (*model.OndokuSubmission, error)
	ListMySubmissions(ctx context.Context, userID uuid.UUID) ([]*model.OndokuSubmission, error)
	UploadAudio(ctx context.Context, userID uuid.UUID, periodIndex, itemIndex int, filename string, body io.Reader) (string, error)
	ResolveVisibility(ctx context.Context, userID uuid.UUID) ([]model.VisibleItem, error)
	ListModelAudio(ctx context.Context) ([]*model.ModelAudioAsset, error)

	AdminListSubmissions(ctx context.Context) ([]*model.OndokuSubmission, error)
	AdminUpdateSubmission(ctx context.Context, submissionID uuid.UUID, req *model.PutOndokuAdminRequest) (*model.OndokuSubmission, error)
	AdminSetVisibility(ctx context.Context, req *model.PutVisibilityRequest) error
	AdminSetUserVisibility(ctx context.Context, req *model.PutUserVisibilityRequest) error
	AdminUploadModelAudio(ctx context.Context, level string, period int, speed, filename string, body io.Reader) (*model.ModelAudioAsset, error)
}

type ondokuService struct {
	db         *gorm.DB
	ondokuRepo repository.OndokuRepository
	userRepo   repository.UserRepository
	storage    Storage
	cfg        *config.Config
}

func NewOndokuService(db *gorm.DB, ondokuRepo repository.OndokuRepository, userRepo repository.UserRepository, storage Storage, cfg *config.Config) OndokuService {
	return &ondokuService{
		db:         db,
		ondokuRepo: ondokuRepo,
		userRepo:   userRepo,
		storage:    storage,
		cfg:        cfg,
	}
}

func (s *ondokuService) requireApproved(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.userRepo.FindProfile(ctx, s.db, userID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if profile == nil || !profile.OndokuApproved {
		return model.NewAppError("ONDOKU_NOT_APPROVED", "音読の受講が承認されていません。", "", model.ErrForbidden)
	}
	return nil
}

// Submit は (user, period, item) の組で提出をアップサートします。
// 同じ座標への再提出は本文・提出時刻を上書きし、添削結果は保持する。
func (s *ondokuService) Submit(ctx context.Context, userID uuid.UUID, req *model.PostOndokuSubmissionRequest) (*model.OndokuSubmission, error) {
	logger := middleware.GetLogger(ctx)

	if err := s.requireApproved(ctx, userID); err != nil {
		return nil, err
	}

	submission := &model.OndokuSubmission{
		SubmissionID: uuid.New(),
		UserID:       userID,
		PeriodIndex:  *req.PeriodIndex,
		ItemIndex:    *req.ItemIndex,
		Content:      req.Content,
		AudioURL:     req.AudioURL,
		Status:       model.OndokuPending,
		SubmittedAt:  time.Now(),
	}
	if err := s.ondokuRepo.UpsertSubmission(ctx, s.db, submission); err != nil {
		logger.Error("Failed to upsert ondoku submission", "error", err, "user_id", userID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の保存に失敗しました。", "", err)
	}

	// アップサートで既存行が勝った場合に備えて保存後の行を読み直す
	saved, err := s.ondokuRepo.FindSubmission(ctx, s.db, userID, *req.PeriodIndex, *req.ItemIndex)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の取得に失敗しました。", "", err)
	}

	logger.Info("Ondoku submitted", "user_id", userID, "period", *req.PeriodIndex, "item", *req.ItemIndex)
	return saved, nil
}

func (s *ondokuService) ListMySubmissions(ctx context.Context, userID uuid.UUID) ([]*model.OndokuSubmission, error) {
	submissions, err := s.ondokuRepo.ListSubmissionsByUser(ctx, s.db, userID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出一覧の取得に失敗しました。", "", err)
	}
	return submissions, nil
}

// UploadAudio は録音ファイルをストレージに保存し、該当座標の提出に紐づけます
func (s *ondokuService) UploadAudio(ctx context.Context, userID uuid.UUID, periodIndex, itemIndex int, filename string, body io.Reader) (string, error) {
	logger := middleware.GetLogger(ctx)

	if err := s.requireApproved(ctx, userID); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedAudioExtensions[ext]
	if !ok {
		return "", model.NewAppError("UNSUPPORTED_AUDIO_FORMAT", "対応していない音声形式です。", "file", model.ErrInvalidInput)
	}

	key := fmt.Sprintf("ondoku/%s/p%d-i%d%s", userID.String(), periodIndex, itemIndex, ext)
	url, err := s.storage.Upload(ctx, key, contentType, body)
	if err != nil {
		logger.Error("Failed to upload ondoku audio", "error", err, "key", key)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "音声のアップロードに失敗しました。", "", err)
	}

	if err := s.ondokuRepo.SetAudioURL(ctx, s.db, userID, periodIndex, itemIndex, url); err != nil && !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to attach audio URL to submission", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "音声の紐づけに失敗しました。", "", err)
	}

	logger.Info("Ondoku audio uploaded", "user_id", userID, "key", key)
	return url, nil
}

// ResolveVisibility は全座標について「ユーザー個別設定 → 全体設定」の順で
// 公開開始時刻を解決し、現在時刻で公開可否を判定します
func (s *ondokuService) ResolveVisibility(ctx context.Context, userID uuid.UUID) ([]model.VisibleItem, error) {
	global, err := s.ondokuRepo.ListVisibility(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "公開設定の取得に失敗しました。", "", err)
	}
	personal, err := s.ondokuRepo.ListUserVisibility(ctx, s.db, userID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "公開設定の取得に失敗しました。", "", err)
	}

	type coord struct{ period, item int }
	globalMap := make(map[coord]*time.Time, len(global))
	for _, w := range global {
		t := w.VisibleFrom
		globalMap[coord{w.PeriodIndex, w.ItemIndex}] = &t
	}
	personalMap := make(map[coord]*time.Time, len(personal))
	for _, w := range personal {
		t := w.VisibleFrom
		personalMap[coord{w.PeriodIndex, w.ItemIndex}] = &t
	}

	now := time.Now()
	items := make([]model.VisibleItem, 0, (config.OndokuPeriodMax+1)*(config.OndokuItemMax+1))
	for period := 0; period <= config.OndokuPeriodMax; period++ {
		for item := 0; item <= config.OndokuItemMax; item++ {
			c := coord{period, item}
			effective := model.EffectiveVisibleFrom(globalMap[c], personalMap[c])
			items = append(items, model.VisibleItem{
				PeriodIndex: period,
				ItemIndex:   item,
				VisibleFrom: effective,
				Visible:     model.IsVisible(effective, now),
			})
		}
	}
	return items, nil
}

func (s *ondokuService) ListModelAudio(ctx context.Context) ([]*model.ModelAudioAsset, error) {
	assets, err := s.ondokuRepo.ListModelAudio(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "お手本音声の取得に失敗しました。", "", err)
	}
	return assets, nil
}

func (s *ondokuService) AdminListSubmissions(ctx context.Context) ([]*model.OndokuSubmission, error) {
	submissions, err := s.ondokuRepo.ListSubmissions(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出一覧の取得に失敗しました。", "", err)
	}
	return submissions, nil
}

// AdminUpdateSubmission は添削結果とステータスの部分更新。
// completed へ遷移した時点で完了時刻を記録する。
func (s *ondokuService) AdminUpdateSubmission(ctx context.Context, submissionID uuid.UUID, req *model.PutOndokuAdminRequest) (*model.OndokuSubmission, error) {
	logger := middleware.GetLogger(ctx)

	now := time.Now()
	updates := make(map[string]interface{})
	if req.Status != nil {
		updates["status"] = *req.Status
		if *req.Status == model.OndokuCompleted {
			updates["completed_at"] = now
		}
	}
	if req.Feedback != nil {
		updates["feedback"] = *req.Feedback
		updates["feedback_at"] = now
	}
	if req.CorrectedContent != nil {
		updates["corrected_content"] = *req.CorrectedContent
	}

	if len(updates) > 0 {
		if err := s.ondokuRepo.UpdateSubmission(ctx, s.db, submissionID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.NewAppError("SUBMISSION_NOT_FOUND", "提出が見つかりません。", "", model.ErrNotFound)
			}
			logger.Error("Failed to update ondoku submission", "error", err, "submission_id", submissionID)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の更新に失敗しました。", "", err)
		}
	}

	submission, err := s.ondokuRepo.FindSubmissionByID(ctx, s.db, submissionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("SUBMISSION_NOT_FOUND", "提出が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の取得に失敗しました。", "", err)
	}
	return submission, nil
}

func (s *ondokuService) AdminSetVisibility(ctx context.Context, req *model.PutVisibilityRequest) error {
	logger := middleware.GetLogger(ctx)
	window := &model.VisibilityWindow{
		PeriodIndex: *req.PeriodIndex,
		ItemIndex:   *req.ItemIndex,
		VisibleFrom: req.VisibleFrom,
	}
	if err := s.ondokuRepo.UpsertVisibility(ctx, s.db, window); err != nil {
		logger.Error("Failed to upsert visibility window", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "公開設定の保存に失敗しました。", "", err)
	}
	logger.Info("Visibility window saved", "period", *req.PeriodIndex, "item", *req.ItemIndex)
	return nil
}

func (s *ondokuService) AdminSetUserVisibility(ctx context.Context, req *model.PutUserVisibilityRequest) error {
	logger := middleware.GetLogger(ctx)

	if _, err := s.userRepo.FindByID(ctx, s.db, req.UserID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "user_id", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	window := &model.UserVisibilityWindow{
		UserID:      req.UserID,
		PeriodIndex: *req.PeriodIndex,
		ItemIndex:   *req.ItemIndex,
		VisibleFrom: req.VisibleFrom,
	}
	if err := s.ondokuRepo.UpsertUserVisibility(ctx, s.db, window); err != nil {
		logger.Error("Failed to upsert user visibility window", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "公開設定の保存に失敗しました。", "", err)
	}
	logger.Info("User visibility window saved", "user_id", req.UserID, "period", *req.PeriodIndex, "item", *req.ItemIndex)
	return nil
}

// AdminUploadModelAudio はお手本音声を保存して (level, period, speed) でアップサートします
func (s *ondokuService) AdminUploadModelAudio(ctx context.Context, level string, period int, speed, filename string, body io.Reader) (*model.ModelAudioAsset, error) {
	logger := middleware.GetLogger(ctx)

	if speed != "fast" && speed != "slow" {
		return nil, model.NewAppError("INVALID_SPEED", "speed は fast か slow を指定してください。", "speed", model.ErrInvalidInput)
	}
	if period < 0 || period > config.OndokuPeriodMax {
		return nil, model.NewAppError("INVALID_PERIOD", "期の指定が範囲外です。", "period", model.ErrInvalidInput)
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedAudioExtensions[ext]
	if !ok {
		return nil, model.NewAppError("UNSUPPORTED_AUDIO_FORMAT", "対応していない音声形式です。", "file", model.ErrInvalidInput)
	}

	key := fmt.Sprintf("model-audio/%s/p%d-%s%s", level, period, speed, ext)
	url, err := s.storage.Upload(ctx, key, contentType, body)
	if err != nil {
		logger.Error("Failed to upload model audio", "error", err, "key", key)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "音声のアップロードに失敗しました。", "", err)
	}

	asset := &model.ModelAudioAsset{
		Level:  level,
		Period: period,
		Speed:  speed,
		URL:    url,
	}
	if err := s.ondokuRepo.UpsertModelAudio(ctx, s.db, asset); err != nil {
		logger.Error("Failed to upsert model audio asset", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "お手本音声の保存に失敗しました。", "", err)
	}

	logger.Info("Model audio saved", "level", level, "period", period, "speed", speed)
	return asset, nil
}
