package repository

import (
	"context"
	"errors"
	"fmt"

	"gogaku_suite/internal/middleware"
	"gogaku_suite/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error)
	FindByHandle(ctx context.Context, db *gorm.DB, handle string) (*model.User, error)
	List(ctx context.Context, db *gorm.DB) ([]*model.User, error)
	Update(ctx context.Context, db *gorm.DB, userID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, db *gorm.DB, userID uuid.UUID) error
	UpsertProfile(ctx context.Context, db *gorm.DB, profile *model.CustomerProfile) error
	FindProfile(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.CustomerProfile, error)
}

type gormUserRepository struct{}

func NewGormUserRepository() UserRepository {
	return &gormUserRepository{}
}

// isUniqueViolation はPostgresの一意制約違反かどうかを判定します
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite (テスト時)
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *gormUserRepository) Create(ctx context.Context, db *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn("Duplicate key error on create user",
				"error", result.Error,
				"handle", user.Handle,
				"email", user.Email,
			)
			return model.ErrConflict
		}
		logger.Error("Error creating user in DB", "error", result.Error, "handle", user.Handle)
		return fmt.Errorf("gormUserRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User
	result := db.WithContext(ctx).Preload("Profile").Where("user_id = ?", userID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding user by ID in DB", "error", result.Error, "user_id", userID.String())
		return nil, fmt.Errorf("gormUserRepository.FindByID: %w", result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User
	result := db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logger.Debug("User not found by email", "email", email)
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding user by email in DB", "error", result.Error, "email", email)
		return nil, fmt.Errorf("gormUserRepository.FindByEmail: %w", result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByHandle(ctx context.Context, db *gorm.DB, handle string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User
	result := db.WithContext(ctx).Where("handle = ?", handle).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding user by handle in DB", "error", result.Error, "handle", handle)
		return nil, fmt.Errorf("gormUserRepository.FindByHandle: %w", result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) List(ctx context.Context, db *gorm.DB) ([]*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var users []*model.User
	result := db.WithContext(ctx).Preload("Profile").Order("created_at DESC").Find(&users)
	if result.Error != nil {
		logger.Error("Error listing users in DB", "error", result.Error)
		return nil, fmt.Errorf("gormUserRepository.List: %w", result.Error)
	}
	return users, nil
}

func (r *gormUserRepository) Update(ctx context.Context, db *gorm.DB, userID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(&model.User{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return model.ErrConflict
		}
		logger.Error("Error updating user in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormUserRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.User{})
	if result.Error != nil {
		logger.Error("Error deleting user in DB", "error", result.Error, "user_id", userID.String())
		return fmt.Errorf("gormUserRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Warn("User not found for deletion (idempotent)", "user_id", userID.String())
	}
	return nil
}

func (r *gormUserRepository) UpsertProfile(ctx context.Context, db *gorm.DB, profile *model.CustomerProfile) error {
	logger := middleware.GetLogger(ctx)
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"region", "plan", "paid", "writing_approved", "ondoku_approved", "period_number", "updated_at",
		}),
	}).Create(profile)
	if result.Error != nil {
		logger.Error("Error upserting customer profile in DB", "error", result.Error, "user_id", profile.UserID.String())
		return fmt.Errorf("gormUserRepository.UpsertProfile: %w", result.Error)
	}
	return nil
}

func (r *gormUserRepository) FindProfile(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.CustomerProfile, error) {
	var profile model.CustomerProfile
	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormUserRepository.FindProfile: %w", result.Error)
	}
	return &profile, nil
}
