package repository

import (
	"context"
	"fmt"
	"time"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, db *gorm.DB, event *model.AnalyticsEvent) error
	Update(ctx context.Context, db *gorm.DB, eventID uuid.UUID, updates map[string]interface{}) error
	Summarize(ctx context.Context, db *gorm.DB, since time.Time) (*model.AnalyticsSummary, error)
}

type gormAnalyticsRepository struct{}

func NewGormAnalyticsRepository() AnalyticsRepository {
	return &gormAnalyticsRepository{}
}

func (r *gormAnalyticsRepository) Create(ctx context.Context, db *gorm.DB, event *model.AnalyticsEvent) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(event)
	if result.Error != nil {
		logger.Error("Error creating analytics event in DB", "error", result.Error, "session_id", event.SessionID)
		return fmt.Errorf("gormAnalyticsRepository.Create: %w", result.Error)
	}
	return nil
}

// Update は作成時に採番したIDで行を直接更新する。
// 「セッションIDの最新行を探す」方式は同時イベントで競合するためIDを必須にしている。
func (r *gormAnalyticsRepository) Update(ctx context.Context, db *gorm.DB, eventID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.AnalyticsEvent{}).Where("event_id = ?", eventID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormAnalyticsRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormAnalyticsRepository) Summarize(ctx context.Context, db *gorm.DB, since time.Time) (*model.AnalyticsSummary, error) {
	logger := middleware.GetLogger(ctx)
	summary := &model.AnalyticsSummary{
		ByDomain:     make(map[string]int64),
		BySourceType: make(map[string]int64),
		ByCountry:    make(map[string]int64),
		SurfaceViews: make(map[string]int64),
	}

	type totalRow struct {
		Total       int64
		LoggedIn    int64
		AvgDuration float64
	}
	var totals totalRow
	err := db.WithContext(ctx).Raw(`
        SELECT COUNT(*) AS total,
               COALESCE(SUM(CASE WHEN logged_in THEN 1 ELSE 0 END), 0) AS logged_in,
               COALESCE(AVG(duration_seconds), 0) AS avg_duration
        FROM analytics_events
        WHERE created_at >= ?
    `, since).Scan(&totals).Error
	if err != nil {
		logger.Error("Error aggregating analytics totals", "error", err)
		return nil, fmt.Errorf("gormAnalyticsRepository.Summarize: %w", err)
	}
	summary.TotalSessions = totals.Total
	summary.LoggedIn = totals.LoggedIn
	summary.AvgDuration = totals.AvgDuration

	type groupRow struct {
		Key string
		Cnt int64
	}

	groupInto := func(column string, dst map[string]int64) error {
		var rows []groupRow
		q := fmt.Sprintf(`
            SELECT COALESCE(NULLIF(%s, ''), '(none)') AS key, COUNT(*) AS cnt
            FROM analytics_events
            WHERE created_at >= ?
            GROUP BY 1
            ORDER BY cnt DESC
        `, column)
		if err := db.WithContext(ctx).Raw(q, since).Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			dst[row.Key] = row.Cnt
		}
		return nil
	}

	if err := groupInto("referrer_domain", summary.ByDomain); err != nil {
		return nil, fmt.Errorf("gormAnalyticsRepository.Summarize: %w", err)
	}
	if err := groupInto("source_type", summary.BySourceType); err != nil {
		return nil, fmt.Errorf("gormAnalyticsRepository.Summarize: %w", err)
	}
	if err := groupInto("country", summary.ByCountry); err != nil {
		return nil, fmt.Errorf("gormAnalyticsRepository.Summarize: %w", err)
	}

	type surfaceRow struct {
		Quiz    int64
		Writing int64
		Ondoku  int64
	}
	var surfaces surfaceRow
	err = db.WithContext(ctx).Raw(`
        SELECT COALESCE(SUM(CASE WHEN quiz_viewed THEN 1 ELSE 0 END), 0) AS quiz,
               COALESCE(SUM(CASE WHEN writing_viewed THEN 1 ELSE 0 END), 0) AS writing,
               COALESCE(SUM(CASE WHEN ondoku_viewed THEN 1 ELSE 0 END), 0) AS ondoku
        FROM analytics_events
        WHERE created_at >= ?
    `, since).Scan(&surfaces).Error
	if err != nil {
		return nil, fmt.Errorf("gormAnalyticsRepository.Summarize: %w", err)
	}
	summary.SurfaceViews["quiz"] = surfaces.Quiz
	summary.SurfaceViews["writing"] = surfaces.Writing
	summary.SurfaceViews["ondoku"] = surfaces.Ondoku

	return summary, nil
}
