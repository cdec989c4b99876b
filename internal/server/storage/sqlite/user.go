package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/storage"
)

// Все временные метки хранятся как unix milliseconds (INTEGER)
const userColumns = `
	id, email, name, password_hash, profile, is_email_verified,
	email_verification_token_hash, email_verification_expires_at,
	reset_password_token_hash, reset_password_expires_at,
	token_version, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(profile),
		user.IsEmailVerified,
		nullString(user.EmailVerificationTokenHash),
		nullMillis(user.EmailVerificationExpiresAt),
		nullString(user.ResetPasswordTokenHash),
		nullMillis(user.ResetPasswordExpiresAt),
		user.TokenVersion,
		user.CreatedAt.UnixMilli(),
		user.UpdatedAt.UnixMilli(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return s.getUser(ctx, query, email)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return s.getUser(ctx, query, userID)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUser updates name and profile
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	query := `UPDATE users SET name = ?, profile = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, user.Name, string(profile), nowMillis(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectOneRow(result)
}

// UpdatePassword stores a new password hash
func (s *Storage) UpdatePassword(ctx context.Context, userID, passwordHash string, bumpTokenVersion bool) error {
	query := `
		UPDATE users
		SET password_hash = ?, token_version = token_version + ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, passwordHash, boolToInt(bumpTokenVersion), nowMillis(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectOneRow(result)
}

// DeleteUser deletes user by ID
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectOneRow(result)
}

// IncrementTokenVersion bumps token_version in a single statement
func (s *Storage) IncrementTokenVersion(ctx context.Context, userID string) error {
	query := `UPDATE users SET token_version = token_version + 1, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, nowMillis(), userID)
	if err != nil {
		return fmt.Errorf("failed to increment token version: %w", err)
	}

	return expectOneRow(result)
}

// SetEmailVerification replaces the outstanding verification token
func (s *Storage) SetEmailVerification(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET email_verification_token_hash = ?, email_verification_expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, tokenHash, expiresAt.UnixMilli(), nowMillis(), userID)
	if err != nil {
		return fmt.Errorf("failed to set email verification: %w", err)
	}

	return expectOneRow(result)
}

// ConsumeEmailVerification atomically consumes a matching unexpired token
func (s *Storage) ConsumeEmailVerification(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	// Условный UPDATE: второй вызов с тем же токеном не найдет строку
	query := `
		UPDATE users
		SET is_email_verified = 1,
			email_verification_token_hash = NULL,
			email_verification_expires_at = NULL,
			updated_at = ?
		WHERE email_verification_token_hash = ? AND email_verification_expires_at > ?
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, nowMillis(), tokenHash, now.UnixMilli()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume email verification: %w", err)
	}

	return user, nil
}

// SetPasswordReset replaces the outstanding reset token
func (s *Storage) SetPasswordReset(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_password_token_hash = ?, reset_password_expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, tokenHash, expiresAt.UnixMilli(), nowMillis(), userID)
	if err != nil {
		return fmt.Errorf("failed to set password reset: %w", err)
	}

	return expectOneRow(result)
}

// ConsumePasswordReset atomically consumes a matching unexpired token and stores the new hash
func (s *Storage) ConsumePasswordReset(
	ctx context.Context,
	tokenHash, passwordHash string,
	now time.Time,
	bumpTokenVersion bool,
) (*models.User, error) {
	query := `
		UPDATE users
		SET password_hash = ?,
			reset_password_token_hash = NULL,
			reset_password_expires_at = NULL,
			token_version = token_version + ?,
			updated_at = ?
		WHERE reset_password_token_hash = ? AND reset_password_expires_at > ?
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		passwordHash,
		boolToInt(bumpTokenVersion),
		nowMillis(),
		tokenHash,
		now.UnixMilli(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume password reset: %w", err)
	}

	return user, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var (
		profile                     string
		verificationHash, resetHash sql.NullString
		verificationExp, resetExp   sql.NullInt64
		createdAt, updatedAt        int64
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&profile,
		&user.IsEmailVerified,
		&verificationHash,
		&verificationExp,
		&resetHash,
		&resetExp,
		&user.TokenVersion,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if profile != "" {
		if err := json.Unmarshal([]byte(profile), &user.Profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
	}

	user.EmailVerificationTokenHash = verificationHash.String
	user.EmailVerificationExpiresAt = millisPtr(verificationExp)
	user.ResetPasswordTokenHash = resetHash.String
	user.ResetPasswordExpiresAt = millisPtr(resetExp)
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	user.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return user, nil
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func millisPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
