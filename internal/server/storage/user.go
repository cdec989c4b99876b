package storage

import (
	"context"
	"time"

	"github.com/iudanet/facialanalyzer/internal/models"
)

// UserStorage defines interface for user data persistence.
// Every method is a single-row operation; implementations must make the
// Consume* methods atomic so that a one-time token can be used only once.
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if email already exists
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by normalized email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateUser updates name and profile
	// Returns ErrUserNotFound if user doesn't exist
	UpdateUser(ctx context.Context, user *models.User) error

	// UpdatePassword stores a new password hash, optionally bumping token version
	// Returns ErrUserNotFound if user doesn't exist
	UpdatePassword(ctx context.Context, userID, passwordHash string, bumpTokenVersion bool) error

	// DeleteUser deletes user by ID
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, userID string) error

	// IncrementTokenVersion invalidates all refresh tokens of the user
	// Returns ErrUserNotFound if user doesn't exist
	IncrementTokenVersion(ctx context.Context, userID string) error

	// SetEmailVerification replaces the outstanding verification token
	SetEmailVerification(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ConsumeEmailVerification marks the matching user verified and clears the token
	// Returns ErrTokenNotFound if no token matches or it expired before now
	ConsumeEmailVerification(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)

	// SetPasswordReset replaces the outstanding reset token
	SetPasswordReset(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ConsumePasswordReset stores the new password hash and clears the token
	// Returns ErrTokenNotFound if no token matches or it expired before now
	ConsumePasswordReset(ctx context.Context, tokenHash, passwordHash string, now time.Time, bumpTokenVersion bool) (*models.User, error)

	// Ping checks storage availability
	Ping(ctx context.Context) error
}
