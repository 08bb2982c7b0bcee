// internal/model/ondoku.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type OndokuStatus string

const (
	OndokuPending    OndokuStatus = "pending"
	OndokuInProgress OndokuStatus = "in_progress"
	OndokuCompleted  OndokuStatus = "completed"
)

// OndokuSubmission は音読課題の提出。
// (user, period, item) の組につき1行。再提出はアップサートで上書きする。
type OndokuSubmission struct {
	SubmissionID     uuid.UUID    `gorm:"type:uuid;primaryKey" json:"submission_id"`
	UserID           uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_period_item,unique" json:"user_id"`
	PeriodIndex      int          `gorm:"not null;index:idx_user_period_item,unique" json:"period_index"`
	ItemIndex        int          `gorm:"not null;index:idx_user_period_item,unique" json:"item_index"`
	Content          string       `gorm:"not null" json:"content"`
	AudioURL         *string      `json:"audio_url,omitempty"`
	Status           OndokuStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	SubmittedAt      time.Time    `gorm:"not null" json:"submitted_at"`
	Feedback         *string      `json:"feedback,omitempty"`
	FeedbackAt       *time.Time   `json:"feedback_at,omitempty"`
	CorrectedContent *string      `json:"corrected_content,omitempty"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
	CreatedAt        time.Time    `json:"-"`
	UpdatedAt        time.Time    `json:"-"`
}

func (OndokuSubmission) TableName() string {
	return "ondoku_submissions"
}

// VisibilityWindow は (period, item) ごとの全体公開開始時刻
type VisibilityWindow struct {
	PeriodIndex int       `gorm:"primaryKey" json:"period_index"`
	ItemIndex   int       `gorm:"primaryKey" json:"item_index"`
	VisibleFrom time.Time `gorm:"not null" json:"visible_from"`
	UpdatedAt   time.Time `json:"-"`
}

func (VisibilityWindow) TableName() string {
	return "visibility_windows"
}

// UserVisibilityWindow はユーザー個別の公開開始時刻。全体設定より優先される。
type UserVisibilityWindow struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PeriodIndex int       `gorm:"primaryKey" json:"period_index"`
	ItemIndex   int       `gorm:"primaryKey" json:"item_index"`
	VisibleFrom time.Time `gorm:"not null" json:"visible_from"`
	UpdatedAt   time.Time `json:"-"`
}

func (UserVisibilityWindow) TableName() string {
	return "user_visibility_windows"
}

// ModelAudioAsset は管理者がアップロードするお手本音声。
// (level, period, speed) の組につき1行。
type ModelAudioAsset struct {
	Level     string    `gorm:"primaryKey" json:"level"`
	Period    int       `gorm:"primaryKey" json:"period"`
	Speed     string    `gorm:"primaryKey" json:"speed"` // "fast" or "slow"
	URL       string    `gorm:"not null" json:"url"`
	UpdatedAt time.Time `json:"-"`
}

func (ModelAudioAsset) TableName() string {
	return "model_audio_assets"
}

// --- DTO ---

type PostOndokuSubmissionRequest struct {
	PeriodIndex *int    `json:"period_index" validate:"required,gte=0,lte=7"`
	ItemIndex   *int    `json:"item_index" validate:"required,gte=0,lte=9"`
	Content     string  `json:"content" validate:"required,max=10000"`
	AudioURL    *string `json:"audio_url,omitempty" validate:"omitempty,url"`
}

type PutOndokuAdminRequest struct {
	Status           *OndokuStatus `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	Feedback         *string       `json:"feedback,omitempty" validate:"omitempty,max=10000"`
	CorrectedContent *string       `json:"corrected_content,omitempty" validate:"omitempty,max=10000"`
}

type PutVisibilityRequest struct {
	PeriodIndex *int      `json:"period_index" validate:"required,gte=0,lte=7"`
	ItemIndex   *int      `json:"item_index" validate:"required,gte=0,lte=9"`
	VisibleFrom time.Time `json:"visible_from" validate:"required"`
}

type PutUserVisibilityRequest struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	PeriodIndex *int      `json:"period_index" validate:"required,gte=0,lte=7"`
	ItemIndex   *int      `json:"item_index" validate:"required,gte=0,lte=9"`
	VisibleFrom time.Time `json:"visible_from" validate:"required"`
}

// VisibleItem は解決済みの公開状態1件
type VisibleItem struct {
	PeriodIndex int        `json:"period_index"`
	ItemIndex   int        `json:"item_index"`
	VisibleFrom *time.Time `json:"visible_from,omitempty"`
	Visible     bool       `json:"visible"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

// EffectiveVisibleFrom は全体設定とユーザー個別設定から有効な公開開始時刻を返す。
// ユーザー個別設定があれば全体設定に関わらずそちらを使う。
func EffectiveVisibleFrom(global, user *time.Time) *time.Time {
	if user != nil {
		return user
	}
	return global
}

// IsVisible は有効な公開開始時刻が存在し、now 以前であるときのみ true
func IsVisible(effective *time.Time, now time.Time) bool {
	return effective != nil && !effective.After(now)
}
