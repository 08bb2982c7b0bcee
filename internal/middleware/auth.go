// internal/middleware/auth.go
package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"gogaku_suite/internal/config"
	"gogaku_suite/internal/model"
	"gogaku_suite/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AdminCookieName は管理画面ナビゲーション用のクッキー名。
// 値は署名済みJWTそのもの (共有シークレットを平文で持ち回らない)。
const AdminCookieName = "admin_token"

// JWTAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証するミドルウェア
func JWTAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			tokenString, err := bearerToken(r)
			if err != nil {
				logger.Warn("JWT auth failed", "error", err)
				appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			userID, role, err := parseToken(cfg, tokenString)
			if err != nil {
				logger.Warn("JWT auth failed: invalid token", "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			ctx = context.WithValue(ctx, model.RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuthMiddleware はトークンがあれば検証してコンテキストに載せ、
// なければ匿名のまま通すミドルウェア。無効なトークンだけを拒否する。
func OptionalJWTAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			tokenString, err := bearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, role, err := parseToken(cfg, tokenString)
			if err != nil {
				logger.Warn("Optional auth: invalid token", "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrUnauthorized)
				webutil.HandleError(w, logger, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			ctx = context.WithValue(ctx, model.RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuthMiddleware は管理者ロールを要求するミドルウェア。
// Bearer ヘッダーに加え、管理画面遷移用のクッキーもフォールバックとして受け付ける。
func AdminAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			tokenString, err := bearerToken(r)
			if err != nil {
				if c, cerr := r.Cookie(AdminCookieName); cerr == nil && c.Value != "" {
					tokenString = c.Value
				} else {
					logger.Warn("Admin auth failed: no credentials")
					webutil.RespondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"}, logger)
					return
				}
			}

			userID, role, err := parseToken(cfg, tokenString)
			if err != nil || role != model.RoleAdmin {
				logger.Warn("Admin auth failed: not an admin token", "error", err)
				webutil.RespondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"}, logger)
				return
			}

			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			ctx = context.WithValue(ctx, model.RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JobSecretMiddleware は定期実行ジョブ用の共有シークレットを検査するミドルウェア
func JobSecretMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			secret := r.Header.Get("X-Job-Secret")
			if cfg.Job.Secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.Job.Secret)) != 1 {
				logger.Warn("Job secret check failed")
				webutil.RespondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"}, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}
	return headerParts[1], nil
}

func parseToken(cfg *config.Config, tokenString string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "", errors.New("invalid claims")
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", err
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, "", err
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = model.RoleStudent
	}
	return userID, role, nil
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからユーザー情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}

// SetTestUser はハンドラテスト用に認証済みコンテキストを作るミドルウェアを返します
func SetTestUser(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), model.UserIDKey, userID)
			ctx = context.WithValue(ctx, model.RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
