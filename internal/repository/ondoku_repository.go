package repository

import (
	"context"
	"errors"
	"fmt"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OndokuRepository interface {
	UpsertSubmission(ctx context.Context, db *gorm.DB, submission *model.OndokuSubmission) error
	FindSubmission(ctx context.Context, db *gorm.DB, userID uuid.UUID, periodIndex, itemIndex int) (*model.OndokuSubmission, error)
	FindSubmissionByID(ctx context.Context, db *gorm.DB, submissionID uuid.UUID) (*model.OndokuSubmission, error)
	ListSubmissionsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.OndokuSubmission, error)
	ListSubmissions(ctx context.Context, db *gorm.DB) ([]*model.OndokuSubmission, error)
	UpdateSubmission(ctx context.Context, db *gorm.DB, submissionID uuid.UUID, updates map[string]interface{}) error
	SetAudioURL(ctx context.Context, db *gorm.DB, userID uuid.UUID, periodIndex, itemIndex int, url string) error

	UpsertVisibility(ctx context.Context, db *gorm.DB, window *model.VisibilityWindow) error
	UpsertUserVisibility(ctx context.Context, db *gorm.DB, window *model.UserVisibilityWindow) error
	ListVisibility(ctx context.Context, db *gorm.DB) ([]*model.VisibilityWindow, error)
	ListUserVisibility(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.UserVisibilityWindow, error)

	UpsertModelAudio(ctx context.Context, db *gorm.DB, asset *model.ModelAudioAsset) error
	ListModelAudio(ctx context.Context, db *gorm.DB) ([]*model.ModelAudioAsset, error)
}

type gormOndokuRepository struct{}

func NewGormOndokuRepository() OndokuRepository {
	return &gormOndokuRepository{}
}

// UpsertSubmission は (user_id, period_index, item_index) をキーに上書き保存します。
// 同じ座標への再提出は新しい行を作らず既存行を更新する。
func (r *gormOndokuRepository) UpsertSubmission(ctx context.Context, db *gorm.DB, submission *model.OndokuSubmission) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "period_index"}, {Name: "item_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "audio_url", "submitted_at", "updated_at",
		}),
	}).Create(submission)
	if result.Error != nil {
		logger.Error("Error upserting ondoku submission in DB",
			"error", result.Error,
			"user_id", submission.UserID.String(),
			"period_index", submission.PeriodIndex,
			"item_index", submission.ItemIndex,
		)
		return fmt.Errorf("gormOndokuRepository.UpsertSubmission: %w", result.Error)
	}
	return nil
}

func (r *gormOndokuRepository) FindSubmission(ctx context.Context, db *gorm.DB, userID uuid.UUID, periodIndex, itemIndex int) (*model.OndokuSubmission, error) {
	var submission model.OndokuSubmission
	result := db.WithContext(ctx).
		Where("user_id = ? AND period_index = ? AND item_index = ?", userID, periodIndex, itemIndex).
		First(&submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormOndokuRepository.FindSubmission: %w", result.Error)
	}
	return &submission, nil
}

func (r *gormOndokuRepository) FindSubmissionByID(ctx context.Context, db *gorm.DB, submissionID uuid.UUID) (*model.OndokuSubmission, error) {
	var submission model.OndokuSubmission
	result := db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormOndokuRepository.FindSubmissionByID: %w", result.Error)
	}
	return &submission, nil
}

func (r *gormOndokuRepository) ListSubmissionsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.OndokuSubmission, error) {
	var submissions []*model.OndokuSubmission
	result := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period_index ASC, item_index ASC").
		Find(&submissions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOndokuRepository.ListSubmissionsByUser: %w", result.Error)
	}
	return submissions, nil
}

func (r *gormOndokuRepository) ListSubmissions(ctx context.Context, db *gorm.DB) ([]*model.OndokuSubmission, error) {
	var submissions []*model.OndokuSubmission
	result := db.WithContext(ctx).Order("submitted_at DESC").Find(&submissions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOndokuRepository.ListSubmissions: %w", result.Error)
	}
	return submissions, nil
}

func (r *gormOndokuRepository) UpdateSubmission(ctx context.Context, db *gorm.DB, submissionID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.OndokuSubmission{}).Where("submission_id = ?", submissionID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating ondoku submission in DB", "error", result.Error, "submission_id", submissionID.String())
		return fmt.Errorf("gormOndokuRepository.UpdateSubmission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOndokuRepository) SetAudioURL(ctx context.Context, db *gorm.DB, userID uuid.UUID, periodIndex, itemIndex int, url string) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.OndokuSubmission{}).
		Where("user_id = ? AND period_index = ? AND item_index = ?", userID, periodIndex, itemIndex).
		Update("audio_url", url)
	if result.Error != nil {
		logger.Error("Error setting audio URL in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormOndokuRepository.SetAudioURL: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormOndokuRepository) UpsertVisibility(ctx context.Context, db *gorm.DB, window *model.VisibilityWindow) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "period_index"}, {Name: "item_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"visible_from", "updated_at"}),
	}).Create(window)
	if result.Error != nil {
		logger.Error("Error upserting visibility window in DB", "error", result.Error)
		return fmt.Errorf("gormOndokuRepository.UpsertVisibility: %w", result.Error)
	}
	return nil
}

func (r *gormOndokuRepository) UpsertUserVisibility(ctx context.Context, db *gorm.DB, window *model.UserVisibilityWindow) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "period_index"}, {Name: "item_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"visible_from", "updated_at"}),
	}).Create(window)
	if result.Error != nil {
		logger.Error("Error upserting user visibility window in DB", "error", result.Error)
		return fmt.Errorf("gormOndokuRepository.UpsertUserVisibility: %w", result.Error)
	}
	return nil
}

func (r *gormOndokuRepository) ListVisibility(ctx context.Context, db *gorm.DB) ([]*model.VisibilityWindow, error) {
	var windows []*model.VisibilityWindow
	result := db.WithContext(ctx).Find(&windows)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOndokuRepository.ListVisibility: %w", result.Error)
	}
	return windows, nil
}

func (r *gormOndokuRepository) ListUserVisibility(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.UserVisibilityWindow, error) {
	var windows []*model.UserVisibilityWindow
	result := db.WithContext(ctx).Where("user_id = ?", userID).Find(&windows)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOndokuRepository.ListUserVisibility: %w", result.Error)
	}
	return windows, nil
}

func (r *gormOndokuRepository) UpsertModelAudio(ctx context.Context, db *gorm.DB, asset *model.ModelAudioAsset) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "level"}, {Name: "period"}, {Name: "speed"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "updated_at"}),
	}).Create(asset)
	if result.Error != nil {
		logger.Error("Error upserting model audio asset in DB", "error", result.Error)
		return fmt.Errorf("gormOndokuRepository.UpsertModelAudio: %w", result.Error)
	}
	return nil
}

func (r *gormOndokuRepository) ListModelAudio(ctx context.Context, db *gorm.DB) ([]*model.ModelAudioAsset, error) {
	var assets []*model.ModelAudioAsset
	result := db.WithContext(ctx).Find(&assets)
	if result.Error != nil {
		return nil, fmt.Errorf("gormOndokuRepository.ListModelAudio: %w", result.Error)
	}
	return assets, nil
}
