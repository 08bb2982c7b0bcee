// internal/model/email.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// FeedbackEmail は送信待ち・送信済みのフィードバックメール1通。
// 予約送信はジョブエンドポイントのポーリングで処理する。
type FeedbackEmail struct {
	EmailID     uuid.UUID   `gorm:"type:uuid;primaryKey" json:"email_id"`
	ToAddress   string      `gorm:"not null" json:"to"`
	Subject     string      `gorm:"not null" json:"subject"`
	Body        string      `gorm:"not null" json:"body"`
	// PDF添付を生成する場合の構造化フィードバック
	Segments    []FeedbackSegment `gorm:"serializer:json" json:"segments,omitempty"`
	Annotation1 string            `json:"annotation1,omitempty"`
	Annotation2 string            `json:"annotation2,omitempty"`
	// 直接アップロードされた添付 (保存先URLのみ保持)
	AttachmentURL  *string     `json:"attachment_url,omitempty"`
	AttachmentName *string     `json:"attachment_name,omitempty"`
	ScheduledAt    *time.Time  `gorm:"index" json:"scheduled_at,omitempty"`
	Status         EmailStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	SentAt         *time.Time  `json:"sent_at,omitempty"`
	LastError      *string     `json:"last_error,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"-"`
}

func (FeedbackEmail) TableName() string {
	return "feedback_emails"
}

// FeedbackSegment はPDF添付の表1行分 (課題文・模範・実際)
type FeedbackSegment struct {
	Task     string `json:"task" validate:"required"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// --- DTO ---

type PostEmailRequest struct {
	To          string            `json:"to" validate:"required,email"`
	Subject     string            `json:"subject" validate:"required,max=500"`
	Body        string            `json:"body" validate:"required"`
	Segments    []FeedbackSegment `json:"segments,omitempty" validate:"omitempty,dive"`
	Annotation1 string            `json:"annotation1,omitempty"`
	Annotation2 string            `json:"annotation2,omitempty"`
	// アップロード済みファイルを添付する場合の取得元URL
	AttachmentURL  *string    `json:"attachment_url,omitempty" validate:"omitempty,url"`
	AttachmentName *string    `json:"attachment_name,omitempty" validate:"omitempty,max=255"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
}

// DigestResult は予約送信ジョブ1回分の結果
type DigestResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
