package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iudanet/facialanalyzer/internal/crypto"
	"github.com/iudanet/facialanalyzer/internal/server/storage"
	"github.com/iudanet/facialanalyzer/internal/validation"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (err error) {
	defer func() { s.observe("change_password", err) }()

	if currentPassword == "" {
		return newError(KindInvalidInput, "Current password and new password are required", nil)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return invalidInput(err)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return internal("SESSION_STORE_FAILED", "change_password", err)
	}

	if err := s.hasher.Verify(currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return newError(KindInvalidCredentials, "Current password is incorrect", nil)
		}
		return internal("SESSION_HASH_FAILED", "change_password", err)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internal("SESSION_HASH_FAILED", "change_password", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, passwordHash, s.revokeOnChange); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return internal("SESSION_STORE_FAILED", "change_password", err)
	}

	s.logger.InfoContext(ctx, "Password changed",
		slog.String("user_id", userID),
		slog.Bool("sessions_revoked", s.revokeOnChange),
	)
	return nil
}

// ForgotPassword issues a reset token and emails it. Unknown emails are
// silently ignored so that the caller cannot probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func() { s.observe("forgot_password", err) }()

	email = validation.NormalizeEmail(email)
	if email == "" {
		return newError(KindInvalidInput, "Email is required", nil)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return internal("SESSION_STORE_FAILED", "forgot_password", err)
	}

	resetToken, resetHash, err := s.newOpaqueToken()
	if err != nil {
		return internal("SESSION_TOKEN_FAILED", "forgot_password", err)
	}

	// Новый запрос перезаписывает предыдущий токен
	if err := s.store.SetPasswordReset(ctx, user.ID, resetHash, s.now().Add(s.resetTTL)); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return internal("SESSION_STORE_FAILED", "forgot_password", err)
	}

	name := user.Name
	s.sendAsync(ctx, api.EventPasswordReset, email, func(ctx context.Context) error {
		return s.notifier.SendPasswordResetEmail(ctx, email, resetToken, name)
	})

	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) (err error) {
	defer func() { s.observe("reset_password", err) }()

	if resetToken == "" {
		return newError(KindInvalidInput, "Token and new password are required", nil)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return invalidInput(err)
	}

	tokenHash, err := crypto.HashToken(resetToken)
	if err != nil {
		return internal("SESSION_TOKEN_FAILED", "reset_password", err)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internal("SESSION_HASH_FAILED", "reset_password", err)
	}

	user, err := s.store.ConsumePasswordReset(ctx, tokenHash, passwordHash, s.now(), s.revokeOnChange)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return newError(KindInvalidOrExpiredToken, "Invalid or expired reset token", nil)
		}
		return internal("SESSION_STORE_FAILED", "reset_password", err)
	}

	s.logger.InfoContext(ctx, "Password reset",
		slog.String("user_id", user.ID),
		slog.Bool("sessions_revoked", s.revokeOnChange),
	)
	return nil
}
