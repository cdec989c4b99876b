package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/facialanalyzer/internal/crypto"
	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/storage"
	"github.com/iudanet/facialanalyzer/internal/validation"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

// Register creates an unverified account, issues a token pair and sends the
// verification email in the background.
func (s *Service) Register(ctx context.Context, email, password, name string) (_ *models.User, _ *models.TokenPair, err error) {
	defer func() { s.observe("register", err) }()

	email = validation.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, invalidInput(err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, nil, invalidInput(err)
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, nil, invalidInput(err)
	}

	_, err = s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, nil, ErrDuplicateEmail
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, nil, internal("SESSION_STORE_FAILED", "register", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, internal("SESSION_HASH_FAILED", "register", err)
	}

	verifyToken, verifyHash, err := s.newOpaqueToken()
	if err != nil {
		return nil, nil, internal("SESSION_TOKEN_FAILED", "register", err)
	}

	now := s.now()
	expires := now.Add(s.verificationTTL)
	user := &models.User{
		ID:                         uuid.New().String(),
		Email:                      email,
		Name:                       name,
		PasswordHash:               passwordHash,
		EmailVerificationTokenHash: verifyHash,
		EmailVerificationExpiresAt: &expires,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Параллельная регистрация с тем же email
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, nil, ErrDuplicateEmail
		}
		return nil, nil, internal("SESSION_STORE_FAILED", "register", err)
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, nil, internal("SESSION_SIGN_FAILED", "register", err)
	}

	s.sendAsync(ctx, api.EventVerifyEmail, email, func(ctx context.Context) error {
		return s.notifier.SendVerificationEmail(ctx, email, verifyToken, name)
	})

	s.logger.InfoContext(ctx, "User registered", slog.String("user_id", user.ID))

	return user.Sanitized(), pair, nil
}

// Login checks the credentials and issues a token pair. Unknown email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (_ *models.User, _ *models.TokenPair, err error) {
	defer func() { s.observe("login", err) }()

	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, newError(KindInvalidInput, "Email and password are required", nil)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return nil, nil, internal("SESSION_STORE_FAILED", "login", err)
	}

	// Для несуществующего email сравниваем с фиктивным хешем, чтобы время ответа не отличалось
	hash := s.getDummyHash()
	if user != nil {
		hash = user.PasswordHash
	}
	verifyErr := s.hasher.Verify(password, hash)

	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if verifyErr != nil {
		if errors.Is(verifyErr, crypto.ErrPasswordMismatch) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, internal("SESSION_HASH_FAILED", "login", verifyErr)
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, nil, internal("SESSION_SIGN_FAILED", "login", err)
	}

	s.logger.InfoContext(ctx, "User logged in", slog.String("user_id", user.ID))

	return user.Sanitized(), pair, nil
}

// Logout invalidates every refresh token of the user by bumping the token version.
// Unknown users are not an error.
func (s *Service) Logout(ctx context.Context, userID string) (err error) {
	defer func() { s.observe("logout", err) }()

	if err := s.store.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return internal("SESSION_STORE_FAILED", "logout", err)
	}

	s.logger.InfoContext(ctx, "User logged out", slog.String("user_id", userID))
	return nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (_ *models.User, _ *models.TokenPair, err error) {
	defer func() { s.observe("refresh", err) }()

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, newError(KindInvalidToken, ErrInvalidToken.Message, err)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, internal("SESSION_STORE_FAILED", "refresh", err)
	}

	if claims.TokenVersion != user.TokenVersion {
		return nil, nil, ErrTokenInvalidated
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, nil, internal("SESSION_SIGN_FAILED", "refresh", err)
	}

	return user.Sanitized(), pair, nil
}

// GetUser returns the user without credential material.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("SESSION_STORE_FAILED", "get_user", err)
	}
	return user.Sanitized(), nil
}

// UpdateProfile changes the name and/or the profile. Nil arguments are left untouched.
func (s *Service) UpdateProfile(ctx context.Context, userID string, name *string, profile *models.Profile) (_ *models.User, err error) {
	defer func() { s.observe("update_profile", err) }()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("SESSION_STORE_FAILED", "update_profile", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := validation.ValidateName(trimmed); err != nil {
			return nil, invalidInput(err)
		}
		user.Name = trimmed
	}

	if profile != nil {
		if err := validation.ValidateProfile(*profile); err != nil {
			return nil, invalidInput(err)
		}
		user.Profile = *profile
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal("SESSION_STORE_FAILED", "update_profile", err)
	}

	return user.Sanitized(), nil
}

// DeleteAccount removes the user record.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (err error) {
	defer func() { s.observe("delete_account", err) }()

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return internal("SESSION_STORE_FAILED", "delete_account", err)
	}

	s.logger.InfoContext(ctx, "Account deleted", slog.String("user_id", userID))
	return nil
}
