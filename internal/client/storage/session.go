// Package storage описывает локальное хранилище клиентской сессии.
package storage

import (
	"context"
	"time"
)

// SessionStorage defines interface for storing the login session on the client.
// The stored session is the only client-side state; nothing is kept in globals.
type SessionStorage interface {
	// SaveSession stores the session, replacing the previous one
	SaveSession(ctx context.Context, s *SessionData) error

	// GetSession retrieves the stored session.
	// Returns ErrSessionNotFound if nobody is logged in
	GetSession(ctx context.Context) (*SessionData, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error
}

// SessionData - токены и снимок пользователя на момент последнего ответа сервера
type SessionData struct {
	AccessExpiresAt time.Time `json:"access_expires_at"`
	SavedAt         time.Time `json:"saved_at"`
	ServerURL       string    `json:"server_url"`
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	EmailVerified   bool      `json:"email_verified"`
}

// AccessExpired reports whether the access token is expired or expires within skew.
func (s *SessionData) AccessExpired(now time.Time, skew time.Duration) bool {
	return s.AccessToken == "" || !now.Add(skew).Before(s.AccessExpiresAt)
}
