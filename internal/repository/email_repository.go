package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailRepository interface {
	Create(ctx context.Context, db *gorm.DB, email *model.FeedbackEmail) error
	FindByID(ctx context.Context, db *gorm.DB, emailID uuid.UUID) (*model.FeedbackEmail, error)
	FindDuePending(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*model.FeedbackEmail, error)
	MarkSent(ctx context.Context, db *gorm.DB, emailID uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, emailID uuid.UUID, sendErr string) error
}

type gormEmailRepository struct{}

func NewGormEmailRepository() EmailRepository {
	return &gormEmailRepository{}
}

func (r *gormEmailRepository) Create(ctx context.Context, db *gorm.DB, email *model.FeedbackEmail) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(email)
	if result.Error != nil {
		logger.Error("Error creating feedback email in DB", "error", result.Error, "to", email.ToAddress)
		return fmt.Errorf("gormEmailRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormEmailRepository) FindByID(ctx context.Context, db *gorm.DB, emailID uuid.UUID) (*model.FeedbackEmail, error) {
	var email model.FeedbackEmail
	result := db.WithContext(ctx).Where("email_id = ?", emailID).First(&email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormEmailRepository.FindByID: %w", result.Error)
	}
	return &email, nil
}

// FindDuePending は予約時刻を過ぎた未送信の行を古い順に返します
func (r *gormEmailRepository) FindDuePending(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*model.FeedbackEmail, error) {
	var emails []*model.FeedbackEmail
	result := db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", model.EmailPending, now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&emails)
	if result.Error != nil {
		return nil, fmt.Errorf("gormEmailRepository.FindDuePending: %w", result.Error)
	}
	return emails, nil
}

func (r *gormEmailRepository) MarkSent(ctx context.Context, db *gorm.DB, emailID uuid.UUID, sentAt time.Time) error {
	result := db.WithContext(ctx).Model(&model.FeedbackEmail{}).Where("email_id = ?", emailID).Updates(map[string]interface{}{
		"status":     model.EmailSent,
		"sent_at":    sentAt,
		"last_error": nil,
	})
	if result.Error != nil {
		return fmt.Errorf("gormEmailRepository.MarkSent: %w", result.Error)
	}
	return nil
}

// MarkFailed は失敗理由を記録して failed に落とす。自動再キューはしない。
func (r *gormEmailRepository) MarkFailed(ctx context.Context, db *gorm.DB, emailID uuid.UUID, sendErr string) error {
	result := db.WithContext(ctx).Model(&model.FeedbackEmail{}).Where("email_id = ?", emailID).Updates(map[string]interface{}{
		"status":     model.EmailFailed,
		"last_error": sendErr,
	})
	if result.Error != nil {
		return fmt.Errorf("gormEmailRepository.MarkFailed: %w", result.Error)
	}
	return nil
}
