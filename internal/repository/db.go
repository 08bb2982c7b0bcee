package repository

import (
	"log/slog"
	"time"

	"gogaku_suite/internal/model"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDB はGORMのDB接続を初期化します
func NewDB(databaseURL string, appLogger *slog.Logger) (*gorm.DB, error) {
	slogGormLogger := slogGorm.New(
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithTraceAll(),
		slogGorm.WithSlowThreshold(500*time.Millisecond),
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: slogGormLogger,
	})
	if err != nil {
		appLogger.Error("Failed to connect to database with GORM", slog.Any("error", err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, err
	}

	if err = sqlDB.Ping(); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close()
		return nil, err
	}

	// コネクションプールの設定
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	appLogger.Info("Database connection established with GORM")

	return db, nil
}

// Migrate はアプリケーションが使う全テーブルを作成・更新します
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.CustomerProfile{},
		&model.QuizExplanationOverride{},
		&model.WritingAssignment{},
		&model.WritingSubmission{},
		&model.OndokuSubmission{},
		&model.VisibilityWindow{},
		&model.UserVisibilityWindow{},
		&model.ModelAudioAsset{},
		&model.AnalyticsEvent{},
		&model.FeedbackEmail{},
	)
}
