package repository

import (
	"context"
	"errors"
	"fmt"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OverrideRepository interface {
	Upsert(ctx context.Context, db *gorm.DB, override *model.QuizExplanationOverride) error
	FindAll(ctx context.Context, db *gorm.DB) ([]*model.QuizExplanationOverride, error)
	FindByQuizID(ctx context.Context, db *gorm.DB, quizID int) (*model.QuizExplanationOverride, error)
}

type gormOverrideRepository struct{}

func NewGormOverrideRepository() OverrideRepository {
	return &gormOverrideRepository{}
}

// Upsert は quiz_id をキーにした上書き保存。通常フローで削除されることはない。
func (r *gormOverrideRepository) Upsert(ctx context.Context, db *gorm.DB, override *model.QuizExplanationOverride) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "quiz_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"explanation", "japanese", "korean_template", "options", "updated_at",
		}),
	}).Create(override)
	if result.Error != nil {
		logger.Error("Error upserting quiz explanation override in DB",
			"error", result.Error,
			"quiz_id", override.QuizID,
		)
		return fmt.Errorf("gormOverrideRepository.Upsert: %w", result.Error)
	}
	return nil
}

func (r *gormOverrideRepository) FindAll(ctx context.Context, db *gorm.DB) ([]*model.QuizExplanationOverride, error) {
	logger := middleware.GetLogger(ctx)
	var overrides []*model.QuizExplanationOverride
	result := db.WithContext(ctx).Find(&overrides)
	if result.Error != nil {
		logger.Error("Error listing quiz explanation overrides in DB", "error", result.Error)
		return nil, fmt.Errorf("gormOverrideRepository.FindAll: %w", result.Error)
	}
	return overrides, nil
}

func (r *gormOverrideRepository) FindByQuizID(ctx context.Context, db *gorm.DB, quizID int) (*model.QuizExplanationOverride, error) {
	var override model.QuizExplanationOverride
	result := db.WithContext(ctx).Where("quiz_id = ?", quizID).First(&override)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormOverrideRepository.FindByQuizID: %w", result.Error)
	}
	return &override, nil
}
