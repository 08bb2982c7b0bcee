package service

import (
	"context"
	"testing"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthTestService(t *testing.T) (AuthService, *gorm.DB, *config.Config) {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{}
	cfg.App.Name = "GogakuSuiteTest"
	cfg.JWT.SecretKey = "test-secret-key"
	cfg.JWT.AccessTokenTTL = config.DefaultAccessTokenTTL
	svc := NewAuthService(db, repository.NewGormUserRepository(), cfg)
	return svc, db, cfg
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: ユーザーとプロフィールが作成される", func(t *testing.T) {
		svc, db, _ := newAuthTestService(t)

		user, err := svc.Register(ctx, &model.RegisterRequest{
			Handle:   "abc",
			Name:     "Test",
			Email:    "a@b.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", user.Email, "登録したメールアドレスがそのまま返る")
		assert.Equal(t, model.RoleStudent, user.Role)
		require.NotNil(t, user.Profile)
		assert.Equal(t, "free", user.Profile.Plan)
		assert.False(t, user.Profile.Paid)

		var count int64
		require.NoError(t, db.Model(&model.CustomerProfile{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("異常系: メールアドレス重複は409", func(t *testing.T) {
		svc, _, _ := newAuthTestService(t)

		_, err := svc.Register(ctx, &model.RegisterRequest{
			Handle: "first", Name: "A", Email: "dup@example.com", Password: "secret1",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &model.RegisterRequest{
			Handle: "second", Name: "B", Email: "dup@example.com", Password: "secret1",
		})
		require.Error(t, err)
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DUPLICATE_EMAIL", appErr.Code)
		assert.ErrorIs(t, appErr.Unwrap(), model.ErrConflict)
	})

	t.Run("異常系: ユーザーID重複は409", func(t *testing.T) {
		svc, _, _ := newAuthTestService(t)

		_, err := svc.Register(ctx, &model.RegisterRequest{
			Handle: "same-id", Name: "A", Email: "x1@example.com", Password: "secret1",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, &model.RegisterRequest{
			Handle: "same-id", Name: "B", Email: "x2@example.com", Password: "secret1",
		})
		require.Error(t, err)
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DUPLICATE_ID", appErr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _, cfg := newAuthTestService(t)

	registered, err := svc.Register(ctx, &model.RegisterRequest{
		Handle: "login-user", Name: "Login", Email: "login@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	t.Run("正常系: ロール付きJWTが返る", func(t *testing.T) {
		resp, err := svc.Login(ctx, &model.LoginRequest{Email: "login@example.com", Password: "secret1"})
		require.NoError(t, err)
		require.NotEmpty(t, resp.AccessToken)

		token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWT.SecretKey), nil
		})
		require.NoError(t, err)
		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, registered.UserID.String(), claims["sub"])
		assert.Equal(t, model.RoleStudent, claims["role"])
	})

	t.Run("異常系: パスワード不一致", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "login@example.com", Password: "wrong"})
		require.Error(t, err)
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "AUTHENTICATION_FAILED", appErr.Code)
	})

	t.Run("異常系: 存在しないユーザーも同じエラー", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
		require.Error(t, err)
		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "AUTHENTICATION_FAILED", appErr.Code)
	})
}

func TestAuthService_AdminUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthTestService(t)

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Handle: "target", Name: "Target", Email: "target@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	paid := true
	writingApproved := true
	periodNumber := 3
	updated, err := svc.AdminUpdateUser(ctx, user.UserID, &model.AdminUpdateUserRequest{
		Paid:            &paid,
		WritingApproved: &writingApproved,
		PeriodNumber:    &periodNumber,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Profile)
	assert.True(t, updated.Profile.Paid)
	assert.True(t, updated.Profile.WritingApproved)
	assert.Equal(t, 3, updated.Profile.PeriodNumber)
	assert.Equal(t, "Target", updated.Name, "未指定フィールドは変更されない")
}
