package service

import (
	"fmt"
	"testing"

	"gogaku_suite/internal/model"
	"gogaku_suite/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB はテストごとに独立したインメモリDBを用意します
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	require.NoError(t, repository.Migrate(db), "failed to migrate test database")
	return db
}

// createTestUser はユーザーとプロフィールを直接DBに作成するヘルパー
func createTestUser(t *testing.T, db *gorm.DB, profile *model.CustomerProfile) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		UserID:       uuid.New(),
		Handle:       "user-" + uuid.NewString()[:8],
		Name:         "テストユーザー",
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: string(hashed),
		Role:         model.RoleStudent,
	}
	require.NoError(t, db.Create(user).Error)

	if profile != nil {
		profile.UserID = user.UserID
		require.NoError(t, db.Create(profile).Error)
		user.Profile = profile
	}
	return user
}
