package service

import (
	"context"
	"encoding/json"
	"errors"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"gorm.io/gorm"
)

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID) (*model.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewPaymentService(db *gorm.DB, userRepo repository.UserRepository, cfg *config.Config) PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey
	return &paymentService{
		db:       db,
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// CreateCheckoutSession は全問アクセス解放のための決済セッションを作成します。
// client_reference_id にユーザーIDを載せ、Webhook側で行を特定する。
func (s *paymentService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID) (*model.CheckoutResponse, error) {
	logger := middleware.GetLogger(ctx)

	profile, err := s.userRepo.FindProfile(ctx, s.db, userID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		logger.Error("Failed to load customer profile", "error", err, "user_id", userID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "決済の開始に失敗しました。", "", err)
	}
	if profile != nil && profile.Paid {
		return nil, model.NewAppError("ALREADY_PAID", "既に全問アクセスをご利用いただけます。", "", model.ErrConflict)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyJPY)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("クイズ全問アクセス"),
					},
					UnitAmount: stripe.Int64(int64(s.cfg.App.CheckoutPriceJPY)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.Payment.SuccessURL),
		CancelURL:         stripe.String(s.cfg.Payment.CancelURL),
		ClientReferenceID: stripe.String(userID.String()),
	}

	sess, err := session.New(params)
	if err != nil {
		logger.Error("Failed to create checkout session", "error", err, "user_id", userID)
		return nil, model.NewAppError("PAYMENT_GATEWAY_ERROR", "決済セッションの作成に失敗しました。", "", model.ErrPaymentGateway)
	}

	logger.Info("Checkout session created", "user_id", userID, "session_id", sess.ID)
	return &model.CheckoutResponse{URL: sess.URL}, nil
}

// HandleWebhook は署名検証済みのイベントだけを処理します。
// paid フラグはこの経路でのみ true になる。
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	logger := middleware.GetLogger(ctx)

	event, err := webhook.ConstructEvent(payload, signature, s.cfg.Payment.WebhookSecret)
	if err != nil {
		logger.Warn("Webhook signature verification failed", "error", err)
		return model.NewAppError("INVALID_SIGNATURE", "署名の検証に失敗しました。", "", model.ErrInvalidInput)
	}

	if event.Type != "checkout.session.completed" {
		logger.Debug("Ignoring webhook event", "type", event.Type)
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		logger.Error("Failed to parse checkout session payload", "error", err)
		return model.NewAppError("INVALID_PAYLOAD", "イベントの解析に失敗しました。", "", model.ErrInvalidInput)
	}

	userID, err := uuid.Parse(sess.ClientReferenceID)
	if err != nil {
		logger.Error("Webhook session has no valid client_reference_id", "value", sess.ClientReferenceID)
		return model.NewAppError("INVALID_PAYLOAD", "ユーザーIDの解析に失敗しました。", "", model.ErrInvalidInput)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.userRepo.FindProfile(ctx, tx, userID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return err
		}
		if profile == nil {
			profile = &model.CustomerProfile{UserID: userID, Plan: "free"}
		}
		profile.Paid = true
		profile.Plan = "paid"
		return s.userRepo.UpsertProfile(ctx, tx, profile)
	})
	if err != nil {
		logger.Error("Failed to mark user as paid", "error", err, "user_id", userID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "決済結果の反映に失敗しました。", "", err)
	}

	logger.Info("User marked as paid", "user_id", userID, "session_id", sess.ID)
	return nil
}
