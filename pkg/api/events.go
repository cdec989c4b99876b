package api

import "time"

// Типы событий уведомлений
const (
	EventVerifyEmail   = "verify_email"
	EventPasswordReset = "password_reset"
)

// NotificationEvent публикуется в Kafka сервером и читается почтовым воркером.
// Token передается в открытом виде: это единственное место, кроме письма, где он существует.
type NotificationEvent struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Type      string    `json:"type"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
}
