// internal/model/error.go
package model

import "errors"

// アプリケーション固有のエラー
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("resource conflict") // 重複エラー用
	ErrPaymentGateway = errors.New("payment gateway unavailable")
	ErrUpstreamFetch  = errors.New("upstream fetch failed")
)

// AppError はハンドラ・サービス間で受け渡すエラー詳細
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	wrapped error
}

func NewAppError(code, message, field string, wrapped error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		wrapped: wrapped,
	}
}

func (e *AppError) Error() string {
	if e.wrapped != nil {
		return e.Code + ": " + e.Message + " (" + e.wrapped.Error() + ")"
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.wrapped
}

// ErrorDetail はAPIエラーレスポンスのボディ
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// OKResponse は純粋な副作用系の操作の成功レスポンス
type OKResponse struct {
	OK bool `json:"ok"`
}

// SuccessResponse は管理系アップサートの成功レスポンス
type SuccessResponse struct {
	Success bool `json:"success"`
}
