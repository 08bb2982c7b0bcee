package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 流入元分類テーブル。ドメインのサフィックス一致で判定する。
var searchNetworks = map[string]string{
	"google":     "google",
	"naver.com":  "naver",
	"yahoo":      "yahoo",
	"bing.com":   "bing",
	"daum.net":   "daum",
	"duckduckgo": "duckduckgo",
}

var socialNetworks = map[string]string{
	"twitter.com":   "x",
	"t.co":          "x",
	"x.com":         "x",
	"instagram.com": "instagram",
	"facebook.com":  "facebook",
	"youtube.com":   "youtube",
	"tiktok.com":    "tiktok",
	"line.me":       "line",
}

// Record と Update はベストエフォート。保存に失敗しても呼び出し側には
// 成功を返し、失敗はログにのみ残す。計測の不調で画面側を止めない。
type AnalyticsService interface {
	Record(ctx context.Context, req *model.PostAnalyticsEventRequest) *model.PostAnalyticsEventResponse
	Update(ctx context.Context, eventID uuid.UUID, req *model.PutAnalyticsEventRequest)
	Summary(ctx context.Context, days int) (*model.AnalyticsSummary, error)
}

type analyticsService struct {
	db            *gorm.DB
	analyticsRepo repository.AnalyticsRepository
}

func NewAnalyticsService(db *gorm.DB, analyticsRepo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{
		db:            db,
		analyticsRepo: analyticsRepo,
	}
}

// classifyReferrer はリファラURLからドメイン・流入種別・ネットワーク名を導出する。
// 空のリファラは直接流入として扱う。
func classifyReferrer(referrer string) (domain, sourceType, network string) {
	if referrer == "" {
		return "", model.SourceDirect, ""
	}
	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return "", model.SourceDirect, ""
	}
	domain = strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")

	for suffix, name := range searchNetworks {
		if strings.Contains(domain, suffix) {
			return domain, model.SourceSearch, name
		}
	}
	for suffix, name := range socialNetworks {
		if domain == suffix || strings.HasSuffix(domain, "."+suffix) {
			return domain, model.SourceSocial, name
		}
	}
	return domain, model.SourceDirect, ""
}

// Record はセッション開始イベントを保存し、採番したIDを返します。
// 後続の更新はこのIDを直接指定するので、同一セッションの行を推測で探す必要はない。
func (s *analyticsService) Record(ctx context.Context, req *model.PostAnalyticsEventRequest) *model.PostAnalyticsEventResponse {
	logger := middleware.GetLogger(ctx)

	domain, sourceType, network := classifyReferrer(req.Referrer)
	event := &model.AnalyticsEvent{
		EventID:        uuid.New(),
		SessionID:      req.SessionID,
		Referrer:       req.Referrer,
		ReferrerDomain: domain,
		SourceType:     sourceType,
		SourceNetwork:  network,
		Country:        req.Country,
		Region:         req.Region,
		LoggedIn:       req.LoggedIn,
	}
	if err := s.analyticsRepo.Create(ctx, s.db, event); err != nil {
		logger.Error("Failed to record analytics event", "error", err, "session_id", req.SessionID)
		return &model.PostAnalyticsEventResponse{OK: true}
	}
	return &model.PostAnalyticsEventResponse{OK: true, EventID: &event.EventID}
}

func (s *analyticsService) Update(ctx context.Context, eventID uuid.UUID, req *model.PutAnalyticsEventRequest) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.QuizViewed != nil {
		updates["quiz_viewed"] = *req.QuizViewed
	}
	if req.WritingViewed != nil {
		updates["writing_viewed"] = *req.WritingViewed
	}
	if req.OndokuViewed != nil {
		updates["ondoku_viewed"] = *req.OndokuViewed
	}
	if req.DurationSeconds != nil {
		updates["duration_seconds"] = *req.DurationSeconds
	}
	if len(updates) == 0 {
		return
	}

	if err := s.analyticsRepo.Update(ctx, s.db, eventID, updates); err != nil {
		logger.Warn("Failed to update analytics event", "error", err, "event_id", eventID)
	}
}

func (s *analyticsService) Summary(ctx context.Context, days int) (*model.AnalyticsSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	summary, err := s.analyticsRepo.Summarize(ctx, s.db, since)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "集計に失敗しました。", "", err)
	}
	summary.Days = days
	return summary, nil
}
