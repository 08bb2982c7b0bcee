// internal/model/quiz.go
package model

import (
	"time"
)

// QuizExplanationOverride はクイズごとの管理者による上書き。
// 行が無い場合は静的カタログの値を使う。
type QuizExplanationOverride struct {
	QuizID         int            `gorm:"primaryKey" json:"quiz_id"`
	Explanation    string         `gorm:"not null" json:"explanation"`
	Japanese       *string        `json:"japanese,omitempty"`
	KoreanTemplate *string        `json:"korean_template,omitempty"`
	Options        []QuizOption   `gorm:"serializer:json" json:"options,omitempty"`
	CreatedAt      time.Time      `json:"-"`
	UpdatedAt      time.Time      `json:"-"`
}

func (QuizExplanationOverride) TableName() string {
	return "quiz_explanation_overrides"
}

// QuizOption は選択肢1件
type QuizOption struct {
	ID   int    `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// PutExplanationRequest は上書きアップサートのリクエストボディ
type PutExplanationRequest struct {
	Explanation    string       `json:"explanation" validate:"required"`
	Japanese       *string      `json:"japanese,omitempty"`
	KoreanTemplate *string      `json:"koreanTemplate,omitempty"`
	Options        []QuizOption `json:"options,omitempty" validate:"omitempty,min=2,dive"`
}

// ExplanationsResponse は GET /api/explanations のレスポンス
type ExplanationsResponse struct {
	Overrides map[int]*QuizExplanationOverride `json:"overrides"`
}
