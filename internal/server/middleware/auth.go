package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/handlers"
	"github.com/iudanet/facialanalyzer/internal/server/session"
	"github.com/iudanet/facialanalyzer/internal/server/token"
)

// TokenVerifier проверяет access токены
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*token.AccessClaims, error)
}

// UserLookup загружает пользователя по ID
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки Bearer access токена.
// Пользователь загружается из хранилища: удаленный аккаунт с еще живым
// токеном получает 401.
func AuthMiddleware(logger *slog.Logger, verifier TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Ожидаем формат: "Bearer <token>"
			authHeader := r.Header.Get("Authorization")
			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.WarnContext(ctx, "Missing or malformed Authorization header")
				handlers.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			claims, err := verifier.VerifyAccessToken(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "Invalid access token", slog.Any("error", err))
				handlers.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.GetUser(ctx, claims.UserID)
			if err != nil {
				if session.KindOf(err) == session.KindUserNotFound {
					logger.WarnContext(ctx, "Token for unknown user", slog.String("user_id", claims.UserID))
					handlers.WriteError(w, http.StatusUnauthorized, "User not found")
					return
				}
				logger.ErrorContext(ctx, "Failed to load user", slog.Any("error", err))
				handlers.WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			logger.DebugContext(ctx, "User authenticated", slog.String("user_id", user.ID))

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(ctx, user)))
		})
	}
}
