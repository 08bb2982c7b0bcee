// internal/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User はアカウントの基本情報
type User struct {
	UserID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Handle       string         `gorm:"unique;not null" json:"id"` // 表示用ID（自己申告）
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"unique;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"type:varchar(20);not null;default:student" json:"role"`
	Source       string         `json:"source,omitempty"` // 登録経路 (メタデータ)
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// 関連 (Preload用)
	Profile *CustomerProfile `gorm:"foreignKey:UserID;references:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// CustomerProfile はユーザー1人につき1行の非正規化プロフィール。
// 行が無い場合は全フラグ未承認・未課金として扱う。
type CustomerProfile struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Region          string    `json:"region"`
	Plan            string    `gorm:"default:free" json:"plan"`
	Paid            bool      `gorm:"not null;default:false" json:"paid"`
	WritingApproved bool      `gorm:"not null;default:false" json:"writing_approved"`
	OndokuApproved  bool      `gorm:"not null;default:false" json:"ondoku_approved"`
	PeriodNumber    int       `gorm:"not null;default:0" json:"period_number"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
	RoleKey   ContextKey = "role"
)

// RegisterRequest は新規登録APIのリクエストボディ (DTO)
type RegisterRequest struct {
	Handle   string `json:"id" validate:"required,min=1,max=50"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Source   string `json:"source,omitempty" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// UserResponse はクライアントに返すユーザー情報
type UserResponse struct {
	UserID    uuid.UUID        `json:"user_id"`
	Handle    string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	CreatedAt time.Time        `json:"created_at"`
	Profile   *CustomerProfile `json:"profile,omitempty"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		UserID:    u.UserID,
		Handle:    u.Handle,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		Profile:   u.Profile,
	}
}

// AdminUpdateUserRequest は管理者によるユーザー情報更新 (部分更新)
type AdminUpdateUserRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Region          *string `json:"region,omitempty"`
	Plan            *string `json:"plan,omitempty"`
	Paid            *bool   `json:"paid,omitempty"`
	WritingApproved *bool   `json:"writing_approved,omitempty"`
	OndokuApproved  *bool   `json:"ondoku_approved,omitempty"`
	PeriodNumber    *int    `json:"period_number,omitempty" validate:"omitempty,gte=0,lte=7"`
}
