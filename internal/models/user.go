package models

import "time"

// Допустимые значения полей профиля
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"

	SkinTypeNormal      = "normal"
	SkinTypeDry         = "dry"
	SkinTypeOily        = "oily"
	SkinTypeCombination = "combination"
	SkinTypeSensitive   = "sensitive"
)

// User представляет учетную запись пользователя
//
// Поля с токенами хранят SHA-256 хеш одноразового токена, а не сам токен.
// PasswordHash и токены никогда не сериализуются в JSON.
type User struct {
	CreatedAt                  time.Time  `json:"createdAt"`
	UpdatedAt                  time.Time  `json:"updatedAt"`
	EmailVerificationExpiresAt *time.Time `json:"-"`
	ResetPasswordExpiresAt     *time.Time `json:"-"`
	Profile                    Profile    `json:"profile"`
	ID                         string     `json:"id"`    // UUID пользователя
	Email                      string     `json:"email"` // lowercased, trimmed
	Name                       string     `json:"name"`
	PasswordHash               string     `json:"-"` // bcrypt
	EmailVerificationTokenHash string     `json:"-"`
	ResetPasswordTokenHash     string     `json:"-"`
	TokenVersion               int        `json:"-"`
	IsEmailVerified            bool       `json:"isEmailVerified"`
}

// Sanitized returns a copy of the user without credential material.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	clone.EmailVerificationTokenHash = ""
	clone.EmailVerificationExpiresAt = nil
	clone.ResetPasswordTokenHash = ""
	clone.ResetPasswordExpiresAt = nil
	if u.Profile.Age != nil {
		age := *u.Profile.Age
		clone.Profile.Age = &age
	}
	return &clone
}

// Profile содержит необязательные данные, используемые при анализе кожи
type Profile struct {
	Age      *int   `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	SkinType string `json:"skinType,omitempty"`
}

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	AccessToken      string
	RefreshToken     string
}
