package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// OpaqueTokenSize - размер одноразового токена в байтах (до hex-кодирования)
const OpaqueTokenSize = 32

// GenerateToken генерирует криптографически случайный одноразовый токен
// Возвращает hex-encoded строку (64 символа)
func GenerateToken() (string, error) {
	buf := make([]byte, OpaqueTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken хеширует одноразовый токен с использованием SHA256
// В БД хранится только хеш, сам токен уходит пользователю в письме
func HashToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}

	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:]), nil
}

// VerifyTokenHash проверяет, соответствует ли токен сохраненному хешу
// Сравнение выполняется за постоянное время
func VerifyTokenHash(token, hashedToken string) error {
	if hashedToken == "" {
		return fmt.Errorf("hashed token cannot be empty")
	}

	computed, err := HashToken(token)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(computed), []byte(hashedToken)) != 1 {
		return fmt.Errorf("invalid token")
	}

	return nil
}
