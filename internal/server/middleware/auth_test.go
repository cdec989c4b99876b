package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/handlers"
	"github.com/iudanet/facialanalyzer/internal/server/session"
	"github.com/iudanet/facialanalyzer/internal/server/token"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// userLookupFunc адаптирует функцию к UserLookup
type userLookupFunc func(ctx context.Context, userID string) (*models.User, error)

func (f userLookupFunc) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return f(ctx, userID)
}

func newTestTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

var alice = &models.User{ID: "user123", Email: "alice@example.com", Name: "Alice"}

func knownUsers(users ...*models.User) UserLookup {
	return userLookupFunc(func(_ context.Context, userID string) (*models.User, error) {
		for _, u := range users {
			if u.ID == userID {
				return u, nil
			}
		}
		return nil, session.ErrUserNotFound
	})
}

// testHandler is a simple handler that checks context values
func testHandler(t *testing.T, expectedUserID, expectedEmail string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := handlers.GetUserID(r.Context())
		require.True(t, ok, "userId should be in context")
		assert.Equal(t, expectedUserID, userID)

		email, ok := handlers.GetEmail(r.Context())
		require.True(t, ok, "email should be in context")
		assert.Equal(t, expectedEmail, email)

		user, ok := handlers.GetUser(r.Context())
		require.True(t, ok)
		assert.Equal(t, expectedUserID, user.ID)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	tokens := newTestTokens(t)
	pair, err := tokens.IssueTokenPair(alice)
	require.NoError(t, err)

	wrappedHandler := AuthMiddleware(setupTestLogger(), tokens, knownUsers(alice))(
		testHandler(t, "user123", "alice@example.com"),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tokens := newTestTokens(t)
	pair, err := tokens.IssueTokenPair(alice)
	require.NoError(t, err)

	ghost := &models.User{ID: "ghost", Email: "ghost@example.com"}
	ghostPair, err := tokens.IssueTokenPair(ghost)
	require.NoError(t, err)

	tests := []struct {
		name          string
		header        string
		expectedError string
	}{
		{
			name:          "missing header",
			header:        "",
			expectedError: "Access denied. No token provided.",
		},
		{
			name:          "wrong scheme",
			header:        "Basic " + pair.AccessToken,
			expectedError: "Access denied. No token provided.",
		},
		{
			name:          "empty token",
			header:        "Bearer ",
			expectedError: "Access denied. No token provided.",
		},
		{
			name:          "garbage token",
			header:        "Bearer not-a-jwt",
			expectedError: "Invalid or expired token",
		},
		{
			name:          "refresh token used as access token",
			header:        "Bearer " + pair.RefreshToken,
			expectedError: "Invalid or expired token",
		},
		{
			name:          "deleted user",
			header:        "Bearer " + ghostPair.AccessToken,
			expectedError: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(setupTestLogger(), tokens, knownUsers(alice))(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("Handler should not be called")
				}),
			)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedError)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	issuer, err := token.NewService(token.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, token.WithClock(func() time.Time { return past }))
	require.NoError(t, err)

	pair, err := issuer.IssueTokenPair(alice)
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), newTestTokens(t), knownUsers(alice))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("Handler should not be called")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_StoreFailure(t *testing.T) {
	tokens := newTestTokens(t)
	pair, err := tokens.IssueTokenPair(alice)
	require.NoError(t, err)

	failing := userLookupFunc(func(context.Context, string) (*models.User, error) {
		return nil, errors.New("database is locked")
	})

	handler := AuthMiddleware(setupTestLogger(), tokens, failing)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("Handler should not be called")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	tokens := newTestTokens(t)
	pair, err := tokens.IssueTokenPair(alice)
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), tokens, knownUsers(alice))(
		testHandler(t, "user123", "alice@example.com"),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
