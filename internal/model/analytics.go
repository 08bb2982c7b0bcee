// internal/model/analytics.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// トラフィック分類
const (
	SourceSearch = "search"
	SourceSocial = "social"
	SourceDirect = "direct"
)

// AnalyticsEvent は閲覧セッション1件につき1行。
// 作成時に採番したIDを後続イベント (タブ閲覧・セッション終了) が直接参照する。
type AnalyticsEvent struct {
	EventID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"event_id"`
	SessionID       string    `gorm:"not null;index" json:"session_id"`
	Referrer        string    `json:"referrer"`
	ReferrerDomain  string    `gorm:"index" json:"referrer_domain"`
	SourceType      string    `gorm:"index" json:"source_type"` // search/social/direct
	SourceNetwork   string    `json:"source_network"`           // google, naver, x, instagram...
	Country         string    `json:"country"`
	Region          string    `json:"region"`
	LoggedIn        bool      `gorm:"not null;default:false" json:"logged_in"`
	QuizViewed      bool      `gorm:"not null;default:false" json:"quiz_viewed"`
	WritingViewed   bool      `gorm:"not null;default:false" json:"writing_viewed"`
	OndokuViewed    bool      `gorm:"not null;default:false" json:"ondoku_viewed"`
	DurationSeconds int       `gorm:"not null;default:0" json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"-"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// --- DTO ---

type PostAnalyticsEventRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Referrer  string `json:"referrer" validate:"max=2048"`
	Country   string `json:"country" validate:"max=100"`
	Region    string `json:"region" validate:"max=100"`
	LoggedIn  bool   `json:"logged_in"`
}

// PostAnalyticsEventResponse は計測イベント作成の応答。
// 記録はベストエフォートなので ok は常に true、保存に失敗した場合は
// event_id が null になる。
type PostAnalyticsEventResponse struct {
	OK      bool       `json:"ok"`
	EventID *uuid.UUID `json:"event_id"`
}

type PutAnalyticsEventRequest struct {
	QuizViewed      *bool `json:"quiz_viewed,omitempty"`
	WritingViewed   *bool `json:"writing_viewed,omitempty"`
	OndokuViewed    *bool `json:"ondoku_viewed,omitempty"`
	DurationSeconds *int  `json:"duration_seconds,omitempty" validate:"omitempty,gte=0"`
}

// AnalyticsSummary は管理画面向けの集計結果
type AnalyticsSummary struct {
	Days          int              `json:"days"`
	TotalSessions int64            `json:"total_sessions"`
	AvgDuration   float64          `json:"avg_duration_seconds"`
	LoggedIn      int64            `json:"logged_in_sessions"`
	ByDomain      map[string]int64 `json:"by_referrer_domain"`
	BySourceType  map[string]int64 `json:"by_source_type"`
	ByCountry     map[string]int64 `json:"by_country"`
	SurfaceViews  map[string]int64 `json:"surface_views"`
}
