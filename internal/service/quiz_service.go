package service

import (
	"context"
	"errors"

	"gogaku_suite/internal/catalog"
	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizService interface {
	ListQuizzes(ctx context.Context, userID *uuid.UUID) ([]catalog.ResolvedQuiz, error)
	GetOverrides(ctx context.Context) (*model.ExplanationsResponse, error)
	UpsertOverride(ctx context.Context, quizID int, req *model.PutExplanationRequest) (*model.QuizExplanationOverride, error)
}

type quizService struct {
	db           *gorm.DB
	overrideRepo repository.OverrideRepository
	userRepo     repository.UserRepository
	cfg          *config.Config
}

func NewQuizService(db *gorm.DB, overrideRepo repository.OverrideRepository, userRepo repository.UserRepository, cfg *config.Config) QuizService {
	return &quizService{
		db:           db,
		overrideRepo: overrideRepo,
		userRepo:     userRepo,
		cfg:          cfg,
	}
}

// ListQuizzes はカタログの問題をシャッフルし、上書きを適用して返します。
// 未課金ユーザー（未ログイン含む）には先頭 FreeLimit 件のみ返す。
func (s *quizService) ListQuizzes(ctx context.Context, userID *uuid.UUID) ([]catalog.ResolvedQuiz, error) {
	logger := middleware.GetLogger(ctx)

	overrides, err := s.overrideRepo.FindAll(ctx, s.db)
	if err != nil {
		logger.Error("Failed to load explanation overrides", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "問題の取得に失敗しました。", "", err)
	}
	overrideMap := make(map[int]*model.QuizExplanationOverride, len(overrides))
	for _, o := range overrides {
		overrideMap[o.QuizID] = o
	}

	paid := false
	if userID != nil {
		profile, err := s.userRepo.FindProfile(ctx, s.db, *userID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to load customer profile", "error", err, "user_id", userID.String())
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "問題の取得に失敗しました。", "", err)
		}
		if profile != nil {
			paid = profile.Paid
		}
	}

	resolved := make([]catalog.ResolvedQuiz, 0, len(catalog.Quizzes))
	for _, q := range catalog.Quizzes {
		resolved = append(resolved, catalog.Resolve(q, overrideMap[q.ID]))
	}
	catalog.ShuffleQuizzes(resolved)

	if !paid && len(resolved) > s.cfg.App.FreeLimit {
		resolved = resolved[:s.cfg.App.FreeLimit]
	}
	return resolved, nil
}

func (s *quizService) GetOverrides(ctx context.Context) (*model.ExplanationsResponse, error) {
	overrides, err := s.overrideRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "解説の取得に失敗しました。", "", err)
	}
	resp := &model.ExplanationsResponse{Overrides: make(map[int]*model.QuizExplanationOverride, len(overrides))}
	for _, o := range overrides {
		resp.Overrides[o.QuizID] = o
	}
	return resp, nil
}

// UpsertOverride は管理画面からの解説上書きを保存します
func (s *quizService) UpsertOverride(ctx context.Context, quizID int, req *model.PutExplanationRequest) (*model.QuizExplanationOverride, error) {
	logger := middleware.GetLogger(ctx)

	if catalog.FindQuiz(quizID) == nil {
		return nil, model.NewAppError("QUIZ_NOT_FOUND", "指定された問題が存在しません。", "quiz_id", model.ErrNotFound)
	}

	override := &model.QuizExplanationOverride{
		QuizID:         quizID,
		Explanation:    req.Explanation,
		Japanese:       req.Japanese,
		KoreanTemplate: req.KoreanTemplate,
		Options:        req.Options,
	}
	if err := s.overrideRepo.Upsert(ctx, s.db, override); err != nil {
		logger.Error("Failed to upsert explanation override", "error", err, "quiz_id", quizID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "解説の保存に失敗しました。", "", err)
	}
	logger.Info("Explanation override saved", "quiz_id", quizID)
	return override, nil
}
