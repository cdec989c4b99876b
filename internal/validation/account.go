package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/facialanalyzer/internal/models"
)

// EmailPattern определяет допустимый формат email
// Намеренно простой шаблон: непробельные символы, @, домен с точкой
var EmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const (
	// MinPasswordLen минимальная длина пароля в символах
	MinPasswordLen = 6
	// MaxPasswordLen ограничение bcrypt (72 байта)
	MaxPasswordLen = 72
	// MaxNameLen максимальная длина имени
	MaxNameLen = 50
	// MaxAge верхняя граница возраста в профиле
	MaxAge = 150
)

// NormalizeEmail приводит email к каноническому виду: trim + lowercase
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет уже нормализованный email
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("please enter a valid email")
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// минимум считается в символах, максимум - в байтах для bcrypt
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	return nil
}

// ValidateName проверяет уже обрезанное имя пользователя
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLen)
	}

	return nil
}

// ValidateProfile проверяет значения профиля
// Пустые строки означают "не указано"
func ValidateProfile(p models.Profile) error {
	if p.Age != nil && (*p.Age < 0 || *p.Age > MaxAge) {
		return fmt.Errorf("age must be between 0 and %d", MaxAge)
	}

	switch p.Gender {
	case "", models.GenderMale, models.GenderFemale, models.GenderOther:
	default:
		return fmt.Errorf("gender must be one of: male, female, other")
	}

	switch p.SkinType {
	case "", models.SkinTypeNormal, models.SkinTypeDry, models.SkinTypeOily,
		models.SkinTypeCombination, models.SkinTypeSensitive:
	default:
		return fmt.Errorf("skin type must be one of: normal, dry, oily, combination, sensitive")
	}

	return nil
}
