package service

import (
	"context"
	"errors"
	"time"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WritingService interface {
	ListAssignments(ctx context.Context) ([]*model.WritingAssignment, error)
	CreateAssignment(ctx context.Context, req *model.PostAssignmentRequest) (*model.WritingAssignment, error)
	UpdateAssignment(ctx context.Context, assignmentID uuid.UUID, req *model.PutAssignmentRequest) (*model.WritingAssignment, error)
	DeleteAssignment(ctx context.Context, assignmentID uuid.UUID) error

	SubmitWriting(ctx context.Context, userID uuid.UUID, req *model.PostWritingSubmissionRequest) (*model.WritingSubmission, error)
	ListMySubmissions(ctx context.Context, userID uuid.UUID) ([]*model.WritingSubmission, error)
	ListAllSubmissions(ctx context.Context) ([]*model.WritingSubmission, error)
	AttachFeedback(ctx context.Context, submissionID uuid.UUID, req *model.PutWritingFeedbackRequest) (*model.WritingSubmission, error)
}

type writingService struct {
	db          *gorm.DB
	writingRepo repository.WritingRepository
	userRepo    repository.UserRepository
}

func NewWritingService(db *gorm.DB, writingRepo repository.WritingRepository, userRepo repository.UserRepository) WritingService {
	return &writingService{
		db:          db,
		writingRepo: writingRepo,
		userRepo:    userRepo,
	}
}

func (s *writingService) ListAssignments(ctx context.Context) ([]*model.WritingAssignment, error) {
	assignments, err := s.writingRepo.ListAssignments(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "課題一覧の取得に失敗しました。", "", err)
	}
	return assignments, nil
}

func (s *writingService) CreateAssignment(ctx context.Context, req *model.PostAssignmentRequest) (*model.WritingAssignment, error) {
	logger := middleware.GetLogger(ctx)
	assignment := &model.WritingAssignment{
		AssignmentID: uuid.New(),
		TitleKo:      req.TitleKo,
		TitleJa:      req.TitleJa,
		Description:  req.Description,
		SortOrder:    req.SortOrder,
	}
	if err := s.writingRepo.CreateAssignment(ctx, s.db, assignment); err != nil {
		logger.Error("Failed to create writing assignment", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "課題の作成に失敗しました。", "", err)
	}
	logger.Info("Writing assignment created", "assignment_id", assignment.AssignmentID)
	return assignment, nil
}

func (s *writingService) UpdateAssignment(ctx context.Context, assignmentID uuid.UUID, req *model.PutAssignmentRequest) (*model.WritingAssignment, error) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.TitleKo != nil {
		updates["title_ko"] = *req.TitleKo
	}
	if req.TitleJa != nil {
		updates["title_ja"] = *req.TitleJa
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := s.writingRepo.UpdateAssignment(ctx, s.db, assignmentID, updates); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.NewAppError("ASSIGNMENT_NOT_FOUND", "課題が見つかりません。", "", model.ErrNotFound)
			}
			logger.Error("Failed to update writing assignment", "error", err, "assignment_id", assignmentID)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "課題の更新に失敗しました。", "", err)
		}
	}

	assignment, err := s.writingRepo.FindAssignmentByID(ctx, s.db, assignmentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("ASSIGNMENT_NOT_FOUND", "課題が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "課題の取得に失敗しました。", "", err)
	}
	return assignment, nil
}

func (s *writingService) DeleteAssignment(ctx context.Context, assignmentID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	if err := s.writingRepo.DeleteAssignment(ctx, s.db, assignmentID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("ASSIGNMENT_NOT_FOUND", "課題が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to delete writing assignment", "error", err, "assignment_id", assignmentID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "課題の削除に失敗しました。", "", err)
	}
	logger.Info("Writing assignment deleted", "assignment_id", assignmentID)
	return nil
}

// SubmitWriting はユーザー×課題の組で提出をアップサートします。
// 再提出は本文と提出時刻を上書きし、添削済みフィードバックは保持する。
func (s *writingService) SubmitWriting(ctx context.Context, userID uuid.UUID, req *model.PostWritingSubmissionRequest) (*model.WritingSubmission, error) {
	logger := middleware.GetLogger(ctx)

	profile, err := s.userRepo.FindProfile(ctx, s.db, userID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to load customer profile", "error", err, "user_id", userID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出に失敗しました。", "", err)
	}
	if profile == nil || !profile.WritingApproved {
		return nil, model.NewAppError("WRITING_NOT_APPROVED", "作文の受講が承認されていません。", "", model.ErrForbidden)
	}

	if _, err := s.writingRepo.FindAssignmentByID(ctx, s.db, req.AssignmentID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("ASSIGNMENT_NOT_FOUND", "課題が見つかりません。", "assignment_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出に失敗しました。", "", err)
	}

	submission := &model.WritingSubmission{
		SubmissionID: uuid.New(),
		UserID:       userID,
		AssignmentID: req.AssignmentID,
		Content:      req.Content,
		SubmittedAt:  time.Now(),
	}
	if err := s.writingRepo.UpsertSubmission(ctx, s.db, submission); err != nil {
		logger.Error("Failed to upsert writing submission", "error", err, "user_id", userID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の保存に失敗しました。", "", err)
	}

	// アップサートで既存行が勝った場合に備えて保存後の行を読み直す
	saved, err := s.writingRepo.FindSubmission(ctx, s.db, userID, req.AssignmentID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の取得に失敗しました。", "", err)
	}

	logger.Info("Writing submitted", "user_id", userID, "assignment_id", req.AssignmentID)
	return saved, nil
}

func (s *writingService) ListMySubmissions(ctx context.Context, userID uuid.UUID) ([]*model.WritingSubmission, error) {
	submissions, err := s.writingRepo.ListSubmissionsByUser(ctx, s.db, userID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出一覧の取得に失敗しました。", "", err)
	}
	return submissions, nil
}

func (s *writingService) ListAllSubmissions(ctx context.Context) ([]*model.WritingSubmission, error) {
	submissions, err := s.writingRepo.ListSubmissions(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出一覧の取得に失敗しました。", "", err)
	}
	return submissions, nil
}

func (s *writingService) AttachFeedback(ctx context.Context, submissionID uuid.UUID, req *model.PutWritingFeedbackRequest) (*model.WritingSubmission, error) {
	logger := middleware.GetLogger(ctx)

	now := time.Now()
	updates := map[string]interface{}{
		"feedback":    req.Feedback,
		"feedback_at": now,
	}
	if err := s.writingRepo.AttachFeedback(ctx, s.db, submissionID, updates); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("SUBMISSION_NOT_FOUND", "提出が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to attach feedback", "error", err, "submission_id", submissionID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "添削の保存に失敗しました。", "", err)
	}

	submission, err := s.writingRepo.FindSubmissionByID(ctx, s.db, submissionID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の取得に失敗しました。", "", err)
	}
	logger.Info("Feedback attached", "submission_id", submissionID)
	return submission, nil
}
