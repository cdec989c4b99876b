// Package api содержит DTO HTTP API и событий уведомлений, общие для сервера и клиента.
package api

import "time"

// RefreshTokenCookie - имя HTTP-only cookie с refresh токеном
const RefreshTokenCookie = "refreshToken"

// Response - общий конверт всех ответов API
type Response[T any] struct {
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile - необязательные данные профиля
type Profile struct {
	Age      *int   `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	SkinType string `json:"skinType,omitempty"`
}

// User - публичное представление пользователя (без хешей и токенов)
type User struct {
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	Profile         *Profile   `json:"profile,omitempty"`
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	IsEmailVerified bool       `json:"isEmailVerified"`
}

// AuthResponse возвращается при регистрации и входе.
// Refresh токен приходит только в cookie.
type AuthResponse struct {
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
	User                 User      `json:"user"`
	AccessToken          string    `json:"accessToken"`
	Message              string    `json:"message,omitempty"`
}

// RefreshResponse возвращается при обновлении токенов
type RefreshResponse struct {
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
	AccessToken          string    `json:"accessToken"`
}

// VerifyEmailRequest - подтверждение email по токену из письма
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// EmailRequest используется для resend-verification и forgot-password
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest - установка нового пароля по токену из письма
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest - смена пароля авторизованным пользователем
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest - частичное обновление; nil поля не меняются
type UpdateProfileRequest struct {
	Name    *string  `json:"name,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
}

// HealthResponse - ответ /api/health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}
