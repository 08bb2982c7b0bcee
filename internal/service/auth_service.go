package service

import (
	"context"
	"errors"
	"time"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	IssueToken(user *model.User) (string, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	AdminUpdateUser(ctx context.Context, userID uuid.UUID, req *model.AdminUpdateUserRequest) (*model.User, error)
	AdminDeleteUser(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		db:       db,
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Register はユーザーとプロフィールを1トランザクションで作成します。
// プロフィールはアップサートなので、途中失敗後の再実行でも安全に収束する。
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var newUser *model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Emailでの重複チェック
		_, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			logger.Warn("Email already exists", "email", req.Email)
			return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check email existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}

		// ユーザーIDでの重複チェック
		_, err = s.userRepo.FindByHandle(ctx, tx, req.Handle)
		if err == nil {
			logger.Warn("Handle already exists", "handle", req.Handle)
			return model.NewAppError("DUPLICATE_ID", "そのユーザーIDは既に使用されています。", "id", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check handle existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
		}

		user := &model.User{
			UserID:       uuid.New(),
			Handle:       req.Handle,
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			Role:         model.RoleStudent,
			Source:       req.Source,
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			// レースコンディションでCreate側が重複を検知した場合
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Conflict during user creation (race condition)", "error", err)
				return model.NewAppError("DUPLICATE_ENTRY", "指定されたIDまたはメールアドレスは既に使用されています。", "id,email", model.ErrConflict)
			}
			logger.Error("Failed to create user in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}

		// プロフィールも同じトランザクションで作成する。
		// アップサートなので再実行時に孤児レコードを残さず収束する。
		profile := &model.CustomerProfile{
			UserID: user.UserID,
			Plan:   "free",
		}
		if err := s.userRepo.UpsertProfile(ctx, tx, profile); err != nil {
			logger.Error("Failed to upsert customer profile", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "プロフィールの作成に失敗しました。", "", err)
		}
		user.Profile = profile

		newUser = user
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("User registered", "user_id", newUser.UserID, "email", newUser.Email)
	return newUser, nil
}

// Login はユーザーを認証し、JWTを返します
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrInvalidInput)
		}
		logger.Error("Login failed: db error on FindByEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login failed: password mismatch", "user_id", user.UserID)
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrInvalidInput)
	}

	signedToken, err := s.IssueToken(user)
	if err != nil {
		logger.Error("Failed to sign JWT", "error", err, "user_id", user.UserID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	logger.Info("Login successful", "user_id", user.UserID)
	return &model.LoginResponse{AccessToken: signedToken}, nil
}

// IssueToken はロールをクレームに含む署名付きトークンを生成します
func (s *authService) IssueToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"iss":  s.cfg.App.Name,
		"sub":  user.UserID.String(),
		"role": user.Role,
		"exp":  jwt.NewNumericDate(time.Now().Add(s.cfg.JWT.AccessTokenTTL)),
		"iat":  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.SecretKey))
}

func (s *authService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("User not found", "user_id", userID.String())
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Error finding user by ID", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx, s.db)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザー一覧の取得に失敗しました。", "", err)
	}
	return users, nil
}

// AdminUpdateUser はユーザー本体とプロフィールの部分更新を行います
func (s *authService) AdminUpdateUser(ctx context.Context, userID uuid.UUID, req *model.AdminUpdateUserRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var updated *model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}

		userUpdates := make(map[string]interface{})
		if req.Name != nil {
			userUpdates["name"] = *req.Name
		}
		if req.Email != nil {
			userUpdates["email"] = *req.Email
		}
		if len(userUpdates) > 0 {
			if err := s.userRepo.Update(ctx, tx, userID, userUpdates); err != nil {
				if errors.Is(err, model.ErrConflict) {
					return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
				}
				return err
			}
		}

		profile := user.Profile
		if profile == nil {
			profile = &model.CustomerProfile{UserID: userID, Plan: "free"}
		}
		profileChanged := false
		if req.Region != nil {
			profile.Region = *req.Region
			profileChanged = true
		}
		if req.Plan != nil {
			profile.Plan = *req.Plan
			profileChanged = true
		}
		if req.Paid != nil {
			profile.Paid = *req.Paid
			profileChanged = true
		}
		if req.WritingApproved != nil {
			profile.WritingApproved = *req.WritingApproved
			profileChanged = true
		}
		if req.OndokuApproved != nil {
			profile.OndokuApproved = *req.OndokuApproved
			profileChanged = true
		}
		if req.PeriodNumber != nil {
			profile.PeriodNumber = *req.PeriodNumber
			profileChanged = true
		}
		if profileChanged {
			if err := s.userRepo.UpsertProfile(ctx, tx, profile); err != nil {
				return err
			}
		}

		updated, err = s.userRepo.FindByID(ctx, tx, userID)
		return err
	})

	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		logger.Error("Transaction failed for AdminUpdateUser", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの更新に失敗しました。", "", err)
	}

	return updated, nil
}

func (s *authService) AdminDeleteUser(ctx context.Context, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	if err := s.userRepo.Delete(ctx, s.db, userID); err != nil {
		logger.Error("Failed to delete user", "error", err, "user_id", userID.String())
		return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの削除に失敗しました。", "", err)
	}
	logger.Info("User deleted", "user_id", userID.String())
	return nil
}
