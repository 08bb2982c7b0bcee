// internal/model/writing.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WritingAssignment は管理者が作成する作文課題
type WritingAssignment struct {
	AssignmentID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"assignment_id"`
	TitleKo      string         `gorm:"not null" json:"title_ko"` // 韓国語タイトル
	TitleJa      string         `gorm:"not null" json:"title_ja"` // 日本語タイトル
	Description  string         `json:"description"`
	SortOrder    int            `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (WritingAssignment) TableName() string {
	return "writing_assignments"
}

// WritingSubmission はユーザーと課題の組につき1件の提出。
// 再提出はアップサートで上書きする。
type WritingSubmission struct {
	SubmissionID uuid.UUID  `gorm:"type:uuid;primaryKey" json:"submission_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_assignment,unique" json:"user_id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_assignment,unique" json:"assignment_id"`
	Content      string     `gorm:"not null" json:"content"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	Feedback     *string    `json:"feedback,omitempty"`
	FeedbackAt   *time.Time `json:"feedback_at,omitempty"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

func (WritingSubmission) TableName() string {
	return "writing_submissions"
}

// --- DTO ---

type PostAssignmentRequest struct {
	TitleKo     string `json:"title_ko" validate:"required,max=200"`
	TitleJa     string `json:"title_ja" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
}

type PutAssignmentRequest struct {
	TitleKo     *string `json:"title_ko,omitempty" validate:"omitempty,min=1,max=200"`
	TitleJa     *string `json:"title_ja,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	SortOrder   *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

type PostWritingSubmissionRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" validate:"required"`
	Content      string    `json:"content" validate:"required,max=10000"`
}

type PutWritingFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,max=10000"`
}
