package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Storage は音声ファイルの保存先。保存後に公開URLを返す。
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// --- S3Storage ---
type S3Storage struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
}

func NewS3Storage(cfg *config.Config) Storage {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		slog.Error("Failed to load AWS config for S3", "error", err)
		panic(err)
	}
	return &S3Storage{
		client:        s3.NewFromConfig(awsCfg),
		bucket:        cfg.Storage.Bucket,
		region:        cfg.Storage.Region,
		publicBaseURL: strings.TrimRight(cfg.Storage.PublicBaseURL, "/"),
	}
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	logger := middleware.GetLogger(ctx)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		logger.Error("Failed to upload object to S3", "error", err, "key", key)
		return "", err
	}

	url := s.publicURL(key)
	logger.Info("Object uploaded to S3", "key", key, "url", url)
	return url, nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// --- LogStorage ---
// 開発用。実際には何も保存せず、ダミーURLを返す。
type LogStorage struct{}

func (s *LogStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	logger := middleware.GetLogger(ctx)
	n, _ := io.Copy(io.Discard, body)
	url := "https://storage.invalid/" + key
	logger.Info("--- Uploading object (LogStorage) ---", "key", key, "content_type", contentType, "bytes", n, "url", url)
	return url, nil
}

// NewStorage は設定に応じた Storage 実装を返すファクトリ関数です
func NewStorage(cfg *config.Config) Storage {
	logger := slog.Default()
	switch cfg.Storage.Type {
	case "s3":
		logger.Info("Initializing S3 storage...")
		return NewS3Storage(cfg)
	case "log":
		logger.Info("Initializing Log storage...")
		return &LogStorage{}
	default:
		logger.Warn("Unknown storage type, defaulting to LogStorage", "type", cfg.Storage.Type)
		return &LogStorage{}
	}
}
