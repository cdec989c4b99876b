package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/session"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

// MaxBodyBytes ограничивает размер тела запроса
const MaxBodyBytes = 1 << 20

const (
	msgInternal    = "Internal server error"
	msgInvalidBody = "Invalid request body"
	msgTooLarge    = "Request body too large"
)

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteError отправляет конверт с ошибкой
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, api.Response[any]{Success: false, Error: message})
}

func writeData[T any](w http.ResponseWriter, statusCode int, data T) {
	WriteJSON(w, statusCode, api.Response[T]{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, api.Response[any]{Success: true, Message: message})
}

// decodeJSON читает тело запроса не больше MaxBodyBytes.
// При ошибке ответ уже отправлен и возвращается false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return false
		}
		WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// StatusFor maps an account error kind to an HTTP status.
func StatusFor(kind session.Kind) int {
	switch kind {
	case session.KindInvalidInput, session.KindInvalidOrExpiredToken, session.KindAlreadyVerified:
		return http.StatusBadRequest
	case session.KindDuplicateEmail:
		return http.StatusConflict
	case session.KindInvalidCredentials, session.KindInvalidToken, session.KindTokenInvalidated:
		return http.StatusUnauthorized
	case session.KindUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// toAPIUser конвертирует модель в публичное представление
func toAPIUser(u *models.User, withDetails bool) api.User {
	out := api.User{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		IsEmailVerified: u.IsEmailVerified,
	}
	if withDetails {
		out.Profile = &api.Profile{
			Age:      u.Profile.Age,
			Gender:   u.Profile.Gender,
			SkinType: u.Profile.SkinType,
		}
		if !u.CreatedAt.IsZero() {
			created := u.CreatedAt.UTC()
			out.CreatedAt = &created
		}
	}
	return out
}

func toModelProfile(p *api.Profile) *models.Profile {
	if p == nil {
		return nil
	}
	return &models.Profile{Age: p.Age, Gender: p.Gender, SkinType: p.SkinType}
}

// CookieConfig описывает параметры cookie с refresh токеном
type CookieConfig struct {
	MaxAge   time.Duration
	SameSite http.SameSite
	Secure   bool
}

// NewCookieConfig returns cross-site cookie settings in production and lax ones otherwise.
func NewCookieConfig(production bool, maxAge time.Duration) CookieConfig {
	if production {
		return CookieConfig{MaxAge: maxAge, Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookieConfig{MaxAge: maxAge, SameSite: http.SameSiteLaxMode}
}

func (c CookieConfig) set(w http.ResponseWriter, refreshToken string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     api.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     api.RefreshTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}
