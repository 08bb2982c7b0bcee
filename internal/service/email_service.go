package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/pdf"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 1回のジョブ実行で処理する予約メールの上限
const digestBatchLimit = 50

// アップロード添付の取得上限。メール添付なのでこれ以上は受け付けない。
const attachmentMaxBytes = 10 << 20

type EmailService interface {
	Enqueue(ctx context.Context, req *model.PostEmailRequest) (*model.FeedbackEmail, error)
	RunDigest(ctx context.Context) (*model.DigestResult, error)
}

type emailService struct {
	db         *gorm.DB
	emailRepo  repository.EmailRepository
	mailer     Mailer
	httpClient *http.Client
	cfg        *config.Config
}

func NewEmailService(db *gorm.DB, emailRepo repository.EmailRepository, mailer Mailer, cfg *config.Config) EmailService {
	return &emailService{
		db:         db,
		emailRepo:  emailRepo,
		mailer:     mailer,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
	}
}

// Enqueue はメールを保存し、予約時刻がなければその場で送信します
func (s *emailService) Enqueue(ctx context.Context, req *model.PostEmailRequest) (*model.FeedbackEmail, error) {
	logger := middleware.GetLogger(ctx)

	email := &model.FeedbackEmail{
		EmailID:     uuid.New(),
		ToAddress:   req.To,
		Subject:     req.Subject,
		Body:        req.Body,
		Segments:    req.Segments,
		Annotation1: req.Annotation1,
		Annotation2: req.Annotation2,
		// 添付本体は保持せず、送信時にURLから取り直す
		AttachmentURL:  req.AttachmentURL,
		AttachmentName: req.AttachmentName,
		ScheduledAt:    req.ScheduledAt,
		Status:         model.EmailPending,
	}
	if err := s.emailRepo.Create(ctx, s.db, email); err != nil {
		logger.Error("Failed to enqueue email", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "メールの登録に失敗しました。", "", err)
	}

	// 予約なしは即時送信
	if req.ScheduledAt == nil {
		if err := s.deliver(ctx, email); err != nil {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "メールの送信に失敗しました。", "", err)
		}
		email.Status = model.EmailSent
	}

	logger.Info("Email enqueued", "email_id", email.EmailID, "scheduled", req.ScheduledAt != nil)
	return email, nil
}

// RunDigest は送信時刻を過ぎた予約メールをまとめて送信します。
// 失敗した行は failed に落とし、次回の対象にはしない。
func (s *emailService) RunDigest(ctx context.Context) (*model.DigestResult, error) {
	logger := middleware.GetLogger(ctx)

	now := time.Now()
	due, err := s.emailRepo.FindDuePending(ctx, s.db, now, digestBatchLimit)
	if err != nil {
		logger.Error("Failed to load due emails", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "予約メールの取得に失敗しました。", "", err)
	}

	result := &model.DigestResult{Processed: len(due)}
	for _, email := range due {
		if err := s.deliver(ctx, email); err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}

	logger.Info("Email digest completed", "processed", result.Processed, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

// deliver は1通を組み立てて送信し、結果をステータスに反映する
func (s *emailService) deliver(ctx context.Context, email *model.FeedbackEmail) error {
	logger := middleware.GetLogger(ctx)

	mail := &OutboundEmail{
		To:      email.ToAddress,
		Subject: email.Subject,
		Body:    email.Body,
	}

	if len(email.Segments) > 0 {
		data, err := pdf.RenderFeedback(email.Segments, email.Annotation1, email.Annotation2, s.cfg.Pdf.FontPath)
		if err != nil {
			logger.Error("Failed to render feedback PDF", "error", err, "email_id", email.EmailID)
			s.markFailed(ctx, email.EmailID, err)
			return err
		}
		mail.Attachments = append(mail.Attachments, Attachment{
			Filename:    "feedback.pdf",
			ContentType: "application/pdf",
			Data:        data,
		})
	}

	if email.AttachmentURL != nil && *email.AttachmentURL != "" {
		attachment, err := s.fetchAttachment(ctx, email)
		if err != nil {
			logger.Error("Failed to fetch email attachment", "error", err, "email_id", email.EmailID)
			s.markFailed(ctx, email.EmailID, err)
			return err
		}
		mail.Attachments = append(mail.Attachments, *attachment)
	}

	if err := s.mailer.Send(ctx, mail); err != nil {
		logger.Error("Failed to send email", "error", err, "email_id", email.EmailID, "to", email.ToAddress)
		s.markFailed(ctx, email.EmailID, err)
		return err
	}

	if err := s.emailRepo.MarkSent(ctx, s.db, email.EmailID, time.Now()); err != nil {
		logger.Error("Failed to mark email as sent", "error", err, "email_id", email.EmailID)
		return err
	}
	return nil
}

// fetchAttachment はアップロード済みファイルを保存先URLから取り直して添付に変換する
func (s *emailService) fetchAttachment(ctx context.Context, email *model.FeedbackEmail) (*Attachment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *email.AttachmentURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, attachmentMaxBytes))
	if err != nil {
		return nil, err
	}

	filename := "attachment"
	if email.AttachmentName != nil && *email.AttachmentName != "" {
		filename = *email.AttachmentName
	} else if parsed, perr := url.Parse(*email.AttachmentURL); perr == nil {
		if base := path.Base(parsed.Path); base != "" && base != "/" && base != "." {
			filename = base
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Attachment{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *emailService) markFailed(ctx context.Context, emailID uuid.UUID, sendErr error) {
	if err := s.emailRepo.MarkFailed(ctx, s.db, emailID, sendErr.Error()); err != nil {
		middleware.GetLogger(ctx).Error("Failed to mark email as failed", "error", err, "email_id", emailID)
	}
}
