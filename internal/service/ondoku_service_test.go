package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOndokuTestService(t *testing.T) (OndokuService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{}
	svc := NewOndokuService(db, repository.NewGormOndokuRepository(), repository.NewGormUserRepository(), &LogStorage{}, cfg)
	return svc, db
}

func intPtr(v int) *int { return &v }

func TestOndokuService_Submit_Upsert(t *testing.T) {
	ctx := context.Background()
	svc, db := newOndokuTestService(t)
	user := createTestUser(t, db, &model.CustomerProfile{Plan: "free", OndokuApproved: true})

	first, err := svc.Submit(ctx, user.UserID, &model.PostOndokuSubmissionRequest{
		PeriodIndex: intPtr(0),
		ItemIndex:   intPtr(0),
		Content:     "最初の提出",
	})
	require.NoError(t, err)
	require.Equal(t, "最初の提出", first.Content)

	second, err := svc.Submit(ctx, user.UserID, &model.PostOndokuSubmissionRequest{
		PeriodIndex: intPtr(0),
		ItemIndex:   intPtr(0),
		Content:     "二回目の提出",
	})
	require.NoError(t, err)
	assert.Equal(t, "二回目の提出", second.Content)

	// 同一座標の行は常に1件で、最新の本文だけが残る
	submissions, err := svc.ListMySubmissions(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Equal(t, "二回目の提出", submissions[0].Content)
}

func TestOndokuService_Submit_RequiresApproval(t *testing.T) {
	ctx := context.Background()
	svc, db := newOndokuTestService(t)
	user := createTestUser(t, db, &model.CustomerProfile{Plan: "free", OndokuApproved: false})

	_, err := svc.Submit(ctx, user.UserID, &model.PostOndokuSubmissionRequest{
		PeriodIndex: intPtr(1),
		ItemIndex:   intPtr(2),
		Content:     "承認前の提出",
	})
	require.Error(t, err)
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.Unwrap(), model.ErrForbidden)
}

func TestOndokuService_Submit_DistinctCoordinates(t *testing.T) {
	ctx := context.Background()
	svc, db := newOndokuTestService(t)
	user := createTestUser(t, db, &model.CustomerProfile{Plan: "free", OndokuApproved: true})

	_, err := svc.Submit(ctx, user.UserID, &model.PostOndokuSubmissionRequest{
		PeriodIndex: intPtr(0), ItemIndex: intPtr(0), Content: "0-0",
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, user.UserID, &model.PostOndokuSubmissionRequest{
		PeriodIndex: intPtr(0), ItemIndex: intPtr(1), Content: "0-1",
	})
	require.NoError(t, err)

	submissions, err := svc.ListMySubmissions(ctx, user.UserID)
	require.NoError(t, err)
	assert.Len(t, submissions, 2)
}

func TestOndokuService_UploadAudio(t *testing.T) {
	ctx := context.Background()
	svc, db := newOndokuTestService(t)
	user := createTestUser(t, db, &model.CustomerProfile{Plan: "free", OndokuApproved: true})

	t.Run("許可された拡張子はURLを返す", func(t *testing.T) {
		url, err := svc.UploadAudio(ctx, user.UserID, 0, 0, "recording.mp3", strings.NewReader("audio-bytes"))
		require.NoError(t, err)
		assert.Contains(t, url, ".mp3")
	})

	t.Run("許可外の拡張子は400相当", func(t *testing.T) {
		_, err := svc.UploadAudio(ctx, user.UserID, 0, 0, "malware.exe", strings.NewReader("x"))
		require.Error(t, err)
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.ErrorIs(t, appErr.Unwrap(), model.ErrInvalidInput)
	})

	t.Run("提出済みの座標には音声URLが紐づく", func(t *testing.T) {
		_, err := svc.Submit(ctx, user.UserID, &model.PostOndokuSubmissionRequest{
			PeriodIndex: intPtr(3), ItemIndex: intPtr(4), Content: "音声付き提出",
		})
		require.NoError(t, err)

		url, err := svc.UploadAudio(ctx, user.UserID, 3, 4, "rec.wav", strings.NewReader("wav-bytes"))
		require.NoError(t, err)

		submissions, err := svc.ListMySubmissions(ctx, user.UserID)
		require.NoError(t, err)
		for _, sub := range submissions {
			if sub.PeriodIndex == 3 && sub.ItemIndex == 4 {
				require.NotNil(t, sub.AudioURL)
				assert.Equal(t, url, *sub.AudioURL)
			}
		}
	})
}

func TestOndokuService_ResolveVisibility(t *testing.T) {
	ctx := context.Background()
	svc, db := newOndokuTestService(t)
	user := createTestUser(t, db, &model.CustomerProfile{Plan: "free", OndokuApproved: true})

	past := time.Now().Add(-1 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	// 全体設定: (0,0) は公開済み、(0,1) は未来
	require.NoError(t, svc.AdminSetVisibility(ctx, &model.PutVisibilityRequest{
		PeriodIndex: intPtr(0), ItemIndex: intPtr(0), VisibleFrom: past,
	}))
	require.NoError(t, svc.AdminSetVisibility(ctx, &model.PutVisibilityRequest{
		PeriodIndex: intPtr(0), ItemIndex: intPtr(1), VisibleFrom: future,
	}))
	// ユーザー個別設定: (0,1) をこのユーザーだけ先行公開
	require.NoError(t, svc.AdminSetUserVisibility(ctx, &model.PutUserVisibilityRequest{
		UserID: user.UserID, PeriodIndex: intPtr(0), ItemIndex: intPtr(1), VisibleFrom: past,
	}))

	items, err := svc.ResolveVisibility(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, items, (config.OndokuPeriodMax+1)*(config.OndokuItemMax+1))

	byCoord := make(map[[2]int]model.VisibleItem, len(items))
	for _, item := range items {
		byCoord[[2]int{item.PeriodIndex, item.ItemIndex}] = item
	}

	assert.True(t, byCoord[[2]int{0, 0}].Visible, "全体設定で公開済み")
	assert.True(t, byCoord[[2]int{0, 1}].Visible, "ユーザー個別設定が全体設定より優先される")
	assert.False(t, byCoord[[2]int{0, 2}].Visible, "設定なしは非公開")
	assert.Nil(t, byCoord[[2]int{0, 2}].VisibleFrom)
}

func TestOndokuService_AdminUpdateSubmission(t *testing.T) {
	ctx := context.Background()
	svc, db := newOndokuTestService(t)
	user := createTestUser(t, db, &model.CustomerProfile{Plan: "free", OndokuApproved: true})

	submitted, err := svc.Submit(ctx, user.UserID, &model.PostOndokuSubmissionRequest{
		PeriodIndex: intPtr(2), ItemIndex: intPtr(5), Content: "添削待ち",
	})
	require.NoError(t, err)

	status := model.OndokuCompleted
	feedback := "発音が良くなっています"
	corrected := "添削済みの本文"
	updated, err := svc.AdminUpdateSubmission(ctx, submitted.SubmissionID, &model.PutOndokuAdminRequest{
		Status:           &status,
		Feedback:         &feedback,
		CorrectedContent: &corrected,
	})
	require.NoError(t, err)

	assert.Equal(t, model.OndokuCompleted, updated.Status)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, feedback, *updated.Feedback)
	require.NotNil(t, updated.CorrectedContent)
	assert.NotNil(t, updated.CompletedAt, "completed への遷移で完了時刻が入る")
	assert.NotNil(t, updated.FeedbackAt)
}

func TestOndokuService_AdminUploadModelAudio(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOndokuTestService(t)

	t.Run("speed の検証", func(t *testing.T) {
		_, err := svc.AdminUploadModelAudio(ctx, "beginner", 0, "medium", "a.mp3", strings.NewReader("x"))
		require.Error(t, err)
	})

	t.Run("同じ座標への再アップロードは上書き", func(t *testing.T) {
		_, err := svc.AdminUploadModelAudio(ctx, "beginner", 1, "fast", "v1.mp3", strings.NewReader("x"))
		require.NoError(t, err)
		asset, err := svc.AdminUploadModelAudio(ctx, "beginner", 1, "fast", "v2.wav", strings.NewReader("y"))
		require.NoError(t, err)

		assets, err := svc.ListModelAudio(ctx)
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, asset.URL, assets[0].URL)
		assert.Contains(t, assets[0].URL, ".wav")
	})
}
