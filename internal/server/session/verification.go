package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/iudanet/facialanalyzer/internal/crypto"
	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/storage"
	"github.com/iudanet/facialanalyzer/internal/validation"
)

// VerifyEmail consumes a verification token and marks the email verified.
func (s *Service) VerifyEmail(ctx context.Context, verifyToken string) (_ *models.User, err error) {
	defer func() { s.observe("verify_email", err) }()

	if verifyToken == "" {
		return nil, newError(KindInvalidInput, "Verification token is required", nil)
	}

	tokenHash, err := crypto.HashToken(verifyToken)
	if err != nil {
		return nil, internal("SESSION_TOKEN_FAILED", "verify_email", err)
	}

	user, err := s.store.ConsumeEmailVerification(ctx, tokenHash, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, newError(KindInvalidOrExpiredToken, "Invalid or expired verification token", nil)
		}
		return nil, internal("SESSION_STORE_FAILED", "verify_email", err)
	}

	s.logger.InfoContext(ctx, "Email verified", slog.String("user_id", user.ID))
	return user.Sanitized(), nil
}

// ResendVerificationEmail issues a fresh verification token and sends it
// synchronously. It reports UserNotFound and AlreadyVerified honestly; hiding
// them from the client is up to the caller.
func (s *Service) ResendVerificationEmail(ctx context.Context, email string) (err error) {
	defer func() { s.observe("resend_verification", err) }()

	email = validation.NormalizeEmail(email)
	if email == "" {
		return newError(KindInvalidInput, "Email is required", nil)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return internal("SESSION_STORE_FAILED", "resend_verification", err)
	}

	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	verifyToken, verifyHash, err := s.newOpaqueToken()
	if err != nil {
		return internal("SESSION_TOKEN_FAILED", "resend_verification", err)
	}

	if err := s.store.SetEmailVerification(ctx, user.ID, verifyHash, s.now().Add(s.verificationTTL)); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return internal("SESSION_STORE_FAILED", "resend_verification", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	if err := s.notifier.SendVerificationEmail(sendCtx, email, verifyToken, user.Name); err != nil {
		return oops.Code("SESSION_NOTIFY_FAILED").
			With("operation", "resend_verification").
			With("user_id", user.ID).
			Wrap(err)
	}

	return nil
}
