package service

import (
	"context"
	"sort"
	"testing"

	"gogaku_suite/internal/catalog"
	"gogaku_suite/internal/config"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizService_ListQuizzes(t *testing.T) {
	ctx := context.Background()

	t.Run("未ログインは無料枠のみ", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := &config.Config{}
		cfg.App.FreeLimit = 3
		svc := NewQuizService(db, repository.NewGormOverrideRepository(), repository.NewGormUserRepository(), cfg)

		quizzes, err := svc.ListQuizzes(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, quizzes, 3)
	})

	t.Run("未課金ユーザーも無料枠のみ", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := &config.Config{}
		cfg.App.FreeLimit = 3
		svc := NewQuizService(db, repository.NewGormOverrideRepository(), repository.NewGormUserRepository(), cfg)

		user := createTestUser(t, db, &model.CustomerProfile{Plan: "free", Paid: false})

		quizzes, err := svc.ListQuizzes(ctx, &user.UserID)
		require.NoError(t, err)
		assert.Len(t, quizzes, 3)
	})

	t.Run("課金済みユーザーは全問", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := &config.Config{}
		cfg.App.FreeLimit = 3
		svc := NewQuizService(db, repository.NewGormOverrideRepository(), repository.NewGormUserRepository(), cfg)

		user := createTestUser(t, db, &model.CustomerProfile{Plan: "paid", Paid: true})

		quizzes, err := svc.ListQuizzes(ctx, &user.UserID)
		require.NoError(t, err)
		assert.Len(t, quizzes, len(catalog.Quizzes))
	})

	t.Run("プロフィールのないユーザーは未課金扱い", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := &config.Config{}
		cfg.App.FreeLimit = 3
		svc := NewQuizService(db, repository.NewGormOverrideRepository(), repository.NewGormUserRepository(), cfg)

		userID := uuid.New()
		quizzes, err := svc.ListQuizzes(ctx, &userID)
		require.NoError(t, err)
		assert.Len(t, quizzes, 3)
	})

	t.Run("シャッフル後もID集合は変わらない", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := &config.Config{}
		cfg.App.FreeLimit = len(catalog.Quizzes)
		svc := NewQuizService(db, repository.NewGormOverrideRepository(), repository.NewGormUserRepository(), cfg)

		quizzes, err := svc.ListQuizzes(ctx, nil)
		require.NoError(t, err)

		gotIDs := make([]int, 0, len(quizzes))
		for _, q := range quizzes {
			gotIDs = append(gotIDs, q.ID)
		}
		wantIDs := make([]int, 0, len(catalog.Quizzes))
		for _, q := range catalog.Quizzes {
			wantIDs = append(wantIDs, q.ID)
		}
		sort.Ints(gotIDs)
		sort.Ints(wantIDs)
		assert.Equal(t, wantIDs, gotIDs)
	})

	t.Run("解説の上書きが反映される", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := &config.Config{}
		cfg.App.FreeLimit = len(catalog.Quizzes)
		overrideRepo := repository.NewGormOverrideRepository()
		svc := NewQuizService(db, overrideRepo, repository.NewGormUserRepository(), cfg)

		targetID := catalog.Quizzes[0].ID
		require.NoError(t, overrideRepo.Upsert(ctx, db, &model.QuizExplanationOverride{
			QuizID:      targetID,
			Explanation: "差し替えた解説",
		}))

		quizzes, err := svc.ListQuizzes(ctx, nil)
		require.NoError(t, err)

		var found bool
		for _, q := range quizzes {
			if q.ID == targetID {
				found = true
				assert.Equal(t, "差し替えた解説", q.Explanation)
			}
		}
		assert.True(t, found)
	})
}

func TestQuizService_UpsertOverride(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	cfg := &config.Config{}
	cfg.App.FreeLimit = 5
	overrideRepo := repository.NewGormOverrideRepository()
	svc := NewQuizService(db, overrideRepo, repository.NewGormUserRepository(), cfg)

	targetID := catalog.Quizzes[0].ID

	t.Run("存在しない問題IDは404", func(t *testing.T) {
		_, err := svc.UpsertOverride(ctx, 99999, &model.PutExplanationRequest{Explanation: "x"})
		require.Error(t, err)
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.ErrorIs(t, appErr.Unwrap(), model.ErrNotFound)
	})

	t.Run("同じ問題への再保存は上書きになる", func(t *testing.T) {
		_, err := svc.UpsertOverride(ctx, targetID, &model.PutExplanationRequest{Explanation: "初版"})
		require.NoError(t, err)
		_, err = svc.UpsertOverride(ctx, targetID, &model.PutExplanationRequest{Explanation: "改訂版"})
		require.NoError(t, err)

		resp, err := svc.GetOverrides(ctx)
		require.NoError(t, err)
		require.Contains(t, resp.Overrides, targetID)
		assert.Equal(t, "改訂版", resp.Overrides[targetID].Explanation)
	})
}
