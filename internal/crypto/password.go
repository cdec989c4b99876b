package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost - стоимость bcrypt для паролей пользователей
const DefaultBcryptCost = 12

// ErrPasswordMismatch возвращается, когда пароль не совпадает с хешем
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordHasher хеширует и проверяет пароли с помощью bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создает hasher с заданной стоимостью.
// Значение вне [bcrypt.MinCost, bcrypt.MaxCost] заменяется на DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает bcrypt-хеш пароля (соль генерируется bcrypt)
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify сравнивает пароль с хешем.
// Возвращает ErrPasswordMismatch при несовпадении.
func (h *PasswordHasher) Verify(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("failed to verify password: %w", err)
}
