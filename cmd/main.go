package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/handlers"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/repository"
	"gogaku_suite/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	// .env はローカル開発用。無ければそのまま進む。
	if err := godotenv.Load(); err != nil {
		tempLogger.Info("No .env file found, using environment variables")
	}

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...")

	// データベース接続とマイグレーション
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	if err := repository.Migrate(db); err != nil {
		slog.Error("Error migrating database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Dependency Injection
	userRepo := repository.NewGormUserRepository()
	overrideRepo := repository.NewGormOverrideRepository()
	writingRepo := repository.NewGormWritingRepository()
	ondokuRepo := repository.NewGormOndokuRepository()
	analyticsRepo := repository.NewGormAnalyticsRepository()
	emailRepo := repository.NewGormEmailRepository()

	mailer := service.NewMailer(&config.Cfg)
	storage := service.NewStorage(&config.Cfg)

	authService := service.NewAuthService(db, userRepo, &config.Cfg)
	quizService := service.NewQuizService(db, overrideRepo, userRepo, &config.Cfg)
	writingService := service.NewWritingService(db, writingRepo, userRepo)
	ondokuService := service.NewOndokuService(db, ondokuRepo, userRepo, storage, &config.Cfg)
	analyticsService := service.NewAnalyticsService(db, analyticsRepo)
	paymentService := service.NewPaymentService(db, userRepo, &config.Cfg)
	emailService := service.NewEmailService(db, emailRepo, mailer, &config.Cfg)
	contentService := service.NewContentService(&config.Cfg)

	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizService)
	writingHandler := handlers.NewWritingHandler(writingService)
	ondokuHandler := handlers.NewOndokuHandler(ondokuService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	emailHandler := handlers.NewEmailHandler(emailService)
	contentHandler := handlers.NewContentHandler(contentService)
	adminHandler := handlers.NewAdminHandler(authService, &config.Cfg)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		// --- 公開ルート ---
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/explanations", quizHandler.GetExplanations)
		r.Get("/content/posts", contentHandler.GetPost)
		r.Post("/analytics/events", analyticsHandler.RecordEvent)
		r.Put("/analytics/events/{eventID}", analyticsHandler.UpdateEvent)
		r.Post("/payments/webhook", paymentHandler.Webhook)

		// 認証は任意 (課金状態で無料枠を制御)
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalJWTAuthMiddleware(&config.Cfg))
			r.Get("/quizzes", quizHandler.ListQuizzes)
		})

		// --- 受講者ルート (Bearer必須) ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(&config.Cfg))

			r.Get("/auth/me", authHandler.GetMe)
			r.Post("/checkout", paymentHandler.CreateCheckout)

			r.Route("/writing", func(r chi.Router) {
				r.Get("/examples", writingHandler.ListExamples)
				r.Get("/assignments", writingHandler.ListAssignments)
				r.Post("/submissions", writingHandler.Submit)
				r.Get("/submissions", writingHandler.ListMySubmissions)
			})

			r.Route("/ondoku", func(r chi.Router) {
				r.Get("/passages", ondokuHandler.GetPassages)
				r.Post("/submissions", ondokuHandler.Submit)
				r.Get("/submissions", ondokuHandler.ListMySubmissions)
				r.Post("/upload", ondokuHandler.UploadAudio)
				r.Get("/visibility", ondokuHandler.GetVisibility)
				r.Get("/model-audio", ondokuHandler.GetModelAudio)
			})
		})

		// --- 管理者ルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuthMiddleware(&config.Cfg))

			r.Post("/admin/verify", adminHandler.Verify)
			r.Get("/admin/users", adminHandler.ListUsers)
			r.Put("/admin/users/{userID}", adminHandler.UpdateUser)
			r.Delete("/admin/users/{userID}", adminHandler.DeleteUser)

			r.Put("/admin/explanations/{quizID}", quizHandler.PutExplanation)

			r.Route("/writing/admin", func(r chi.Router) {
				r.Get("/assignments", writingHandler.ListAssignments)
				r.Post("/assignments", writingHandler.AdminCreateAssignment)
				r.Put("/assignments/{assignmentID}", writingHandler.AdminUpdateAssignment)
				r.Delete("/assignments/{assignmentID}", writingHandler.AdminDeleteAssignment)
				r.Get("/submissions", writingHandler.AdminListSubmissions)
				r.Put("/submissions/{submissionID}/feedback", writingHandler.AdminAttachFeedback)
			})

			r.Route("/admin/ondoku", func(r chi.Router) {
				r.Get("/submissions", ondokuHandler.AdminListSubmissions)
				r.Put("/submissions/{submissionID}", ondokuHandler.AdminUpdateSubmission)
				r.Put("/visibility", ondokuHandler.AdminPutVisibility)
				r.Put("/visibility/user", ondokuHandler.AdminPutUserVisibility)
				r.Post("/model-audio", ondokuHandler.AdminUploadModelAudio)
			})

			r.Get("/admin/analytics", analyticsHandler.AdminSummary)
			r.Post("/admin/emails", emailHandler.AdminSendEmail)
		})

		// --- ジョブルート (共有シークレット) ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.JobSecretMiddleware(&config.Cfg))
			r.Post("/jobs/email-digest", emailHandler.RunDigest)
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
