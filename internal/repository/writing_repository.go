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

type WritingRepository interface {
	CreateAssignment(ctx context.Context, db *gorm.DB, assignment *model.WritingAssignment) error
	FindAssignmentByID(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) (*model.WritingAssignment, error)
	ListAssignments(ctx context.Context, db *gorm.DB) ([]*model.WritingAssignment, error)
	UpdateAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID, updates map[string]interface{}) error
	DeleteAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) error

	UpsertSubmission(ctx context.Context, db *gorm.DB, submission *model.WritingSubmission) error
	FindSubmission(ctx context.Context, db *gorm.DB, userID, assignmentID uuid.UUID) (*model.WritingSubmission, error)
	FindSubmissionByID(ctx context.Context, db *gorm.DB, submissionID uuid.UUID) (*model.WritingSubmission, error)
	ListSubmissionsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.WritingSubmission, error)
	ListSubmissions(ctx context.Context, db *gorm.DB) ([]*model.WritingSubmission, error)
	AttachFeedback(ctx context.Context, db *gorm.DB, submissionID uuid.UUID, updates map[string]interface{}) error
}

type gormWritingRepository struct{}

func NewGormWritingRepository() WritingRepository {
	return &gormWritingRepository{}
}

func (r *gormWritingRepository) CreateAssignment(ctx context.Context, db *gorm.DB, assignment *model.WritingAssignment) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(assignment)
	if result.Error != nil {
		logger.Error("Error creating writing assignment in DB", "error", result.Error)
		return fmt.Errorf("gormWritingRepository.CreateAssignment: %w", result.Error)
	}
	return nil
}

func (r *gormWritingRepository) FindAssignmentByID(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) (*model.WritingAssignment, error) {
	var assignment model.WritingAssignment
	result := db.WithContext(ctx).Where("assignment_id = ?", assignmentID).First(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormWritingRepository.FindAssignmentByID: %w", result.Error)
	}
	return &assignment, nil
}

func (r *gormWritingRepository) ListAssignments(ctx context.Context, db *gorm.DB) ([]*model.WritingAssignment, error) {
	logger := middleware.GetLogger(ctx)
	var assignments []*model.WritingAssignment
	result := db.WithContext(ctx).Order("sort_order ASC, created_at ASC").Find(&assignments)
	if result.Error != nil {
		logger.Error("Error listing writing assignments in DB", "error", result.Error)
		return nil, fmt.Errorf("gormWritingRepository.ListAssignments: %w", result.Error)
	}
	return assignments, nil
}

func (r *gormWritingRepository) UpdateAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.WritingAssignment{}).Where("assignment_id = ?", assignmentID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating writing assignment in DB", "error", result.Error, "assignment_id", assignmentID.String())
		return fmt.Errorf("gormWritingRepository.UpdateAssignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormWritingRepository) DeleteAssignment(ctx context.Context, db *gorm.DB, assignmentID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("assignment_id = ?", assignmentID).Delete(&model.WritingAssignment{})
	if result.Error != nil {
		logger.Error("Error deleting writing assignment in DB", "error", result.Error, "assignment_id", assignmentID.String())
		return fmt.Errorf("gormWritingRepository.DeleteAssignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpsertSubmission は (user_id, assignment_id) をキーに提出を上書き保存します
func (r *gormWritingRepository) UpsertSubmission(ctx context.Context, db *gorm.DB, submission *model.WritingSubmission) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "assignment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "submitted_at", "updated_at",
		}),
	}).Create(submission)
	if result.Error != nil {
		logger.Error("Error upserting writing submission in DB",
			"error", result.Error,
			"user_id", submission.UserID.String(),
			"assignment_id", submission.AssignmentID.String(),
		)
		return fmt.Errorf("gormWritingRepository.UpsertSubmission: %w", result.Error)
	}
	return nil
}

func (r *gormWritingRepository) FindSubmission(ctx context.Context, db *gorm.DB, userID, assignmentID uuid.UUID) (*model.WritingSubmission, error) {
	var submission model.WritingSubmission
	result := db.WithContext(ctx).Where("user_id = ? AND assignment_id = ?", userID, assignmentID).First(&submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormWritingRepository.FindSubmission: %w", result.Error)
	}
	return &submission, nil
}

func (r *gormWritingRepository) FindSubmissionByID(ctx context.Context, db *gorm.DB, submissionID uuid.UUID) (*model.WritingSubmission, error) {
	var submission model.WritingSubmission
	result := db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormWritingRepository.FindSubmissionByID: %w", result.Error)
	}
	return &submission, nil
}

func (r *gormWritingRepository) ListSubmissionsByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.WritingSubmission, error) {
	var submissions []*model.WritingSubmission
	result := db.WithContext(ctx).Where("user_id = ?", userID).Order("submitted_at DESC").Find(&submissions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormWritingRepository.ListSubmissionsByUser: %w", result.Error)
	}
	return submissions, nil
}

func (r *gormWritingRepository) ListSubmissions(ctx context.Context, db *gorm.DB) ([]*model.WritingSubmission, error) {
	var submissions []*model.WritingSubmission
	result := db.WithContext(ctx).Order("submitted_at DESC").Find(&submissions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormWritingRepository.ListSubmissions: %w", result.Error)
	}
	return submissions, nil
}

func (r *gormWritingRepository) AttachFeedback(ctx context.Context, db *gorm.DB, submissionID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Model(&model.WritingSubmission{}).Where("submission_id = ?", submissionID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error attaching feedback in DB", "error", result.Error, "submission_id", submissionID.String())
		return fmt.Errorf("gormWritingRepository.AttachFeedback: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
