package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/facialanalyzer/internal/crypto"
	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/storage"
	"github.com/iudanet/facialanalyzer/internal/server/token"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// mockUserStorage is an in-memory UserStorage with injectable errors
type mockUserStorage struct {
	users       map[string]*models.User // id -> User
	createError error
	getError    error
	updateError error
	mu          sync.Mutex
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (m *mockUserStorage) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = clone(user)
	return nil
}

func (m *mockUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return clone(u), nil
}

// mutate applies fn to the stored user under the lock
func (m *mockUserStorage) mutate(userID string, fn func(u *models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (m *mockUserStorage) UpdateUser(_ context.Context, user *models.User) error {
	return m.mutate(user.ID, func(u *models.User) {
		u.Name = user.Name
		u.Profile = user.Profile
	})
}

func (m *mockUserStorage) UpdatePassword(_ context.Context, userID, passwordHash string, bump bool) error {
	return m.mutate(userID, func(u *models.User) {
		u.PasswordHash = passwordHash
		if bump {
			u.TokenVersion++
		}
	})
}

func (m *mockUserStorage) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, userID)
	return nil
}

func (m *mockUserStorage) IncrementTokenVersion(_ context.Context, userID string) error {
	return m.mutate(userID, func(u *models.User) { u.TokenVersion++ })
}

func (m *mockUserStorage) SetEmailVerification(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return m.mutate(userID, func(u *models.User) {
		u.EmailVerificationTokenHash = tokenHash
		u.EmailVerificationExpiresAt = &expiresAt
	})
}

func (m *mockUserStorage) ConsumeEmailVerification(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.EmailVerificationTokenHash == tokenHash && u.EmailVerificationExpiresAt != nil &&
			u.EmailVerificationExpiresAt.After(now) {
			u.IsEmailVerified = true
			u.EmailVerificationTokenHash = ""
			u.EmailVerificationExpiresAt = nil
			return clone(u), nil
		}
	}
	return nil, storage.ErrTokenNotFound
}

func (m *mockUserStorage) SetPasswordReset(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return m.mutate(userID, func(u *models.User) {
		u.ResetPasswordTokenHash = tokenHash
		u.ResetPasswordExpiresAt = &expiresAt
	})
}

func (m *mockUserStorage) ConsumePasswordReset(
	_ context.Context,
	tokenHash, passwordHash string,
	now time.Time,
	bump bool,
) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetPasswordTokenHash == tokenHash && u.ResetPasswordExpiresAt != nil &&
			u.ResetPasswordExpiresAt.After(now) {
			u.PasswordHash = passwordHash
			u.ResetPasswordTokenHash = ""
			u.ResetPasswordExpiresAt = nil
			if bump {
				u.TokenVersion++
			}
			return clone(u), nil
		}
	}
	return nil, storage.ErrTokenNotFound
}

func (m *mockUserStorage) Ping(context.Context) error { return nil }

func (m *mockUserStorage) get(t *testing.T, userID string) *models.User {
	t.Helper()
	u, err := m.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	return u
}

// sentMail - одно отправленное уведомление
type sentMail struct {
	kind  string
	email string
	token string
	name  string
}

type recordingNotifier struct {
	err   error
	block chan struct{} // если не nil, отправка ждет закрытия канала
	sent  []sentMail
	mu    sync.Mutex
}

func (r *recordingNotifier) record(ctx context.Context, mail sentMail) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, mail)
	return r.err
}

func (r *recordingNotifier) SendVerificationEmail(ctx context.Context, email, token, name string) error {
	return r.record(ctx, sentMail{kind: api.EventVerifyEmail, email: email, token: token, name: name})
}

func (r *recordingNotifier) SendPasswordResetEmail(ctx context.Context, email, token, name string) error {
	return r.record(ctx, sentMail{kind: api.EventPasswordReset, email: email, token: token, name: name})
}

func (r *recordingNotifier) calls() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMail(nil), r.sent...)
}

// last returns the most recent mail of the given kind
func (r *recordingNotifier) last(t *testing.T, kind string) sentMail {
	t.Helper()
	calls := r.calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].kind == kind {
			return calls[i]
		}
	}
	t.Fatalf("no %s mail sent", kind)
	return sentMail{}
}

// testClock is a manually advanced clock
type testClock struct {
	now time.Time
	mu  sync.Mutex
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	svc      *Service
	store    *mockUserStorage
	notifier *recordingNotifier
	clock    *testClock
	tokens   *token.Service
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	clock := newTestClock()
	tokens, err := token.NewService(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, token.WithClock(clock.Now))
	require.NoError(t, err)

	env := &testEnv{
		store:    newMockUserStorage(),
		notifier: &recordingNotifier{},
		clock:    clock,
		tokens:   tokens,
	}

	base := []Option{
		WithClock(clock.Now),
		WithPasswordHasher(crypto.NewPasswordHasher(bcrypt.MinCost)),
	}
	env.svc = NewService(env.store, tokens, env.notifier, setupTestLogger(), append(base, opts...)...)
	t.Cleanup(env.svc.Wait)

	return env
}

// register registers a user and waits for the verification email
func (e *testEnv) register(t *testing.T, email, password, name string) (*models.User, *models.TokenPair) {
	t.Helper()
	user, pair, err := e.svc.Register(context.Background(), email, password, name)
	require.NoError(t, err)
	e.svc.Wait()
	return user, pair
}

var errStoreDown = errors.New("database is locked")
