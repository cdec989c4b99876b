package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockAccountService - ручной мок AccountService; каждое поле задает ответ метода
type mockAccountService struct {
	user        *models.User
	pair        *models.TokenPair
	err         error
	calledWith  []string
	profileName *string
	profile     *models.Profile
}

func (m *mockAccountService) call(args ...string) {
	m.calledWith = append(m.calledWith, args...)
}

func (m *mockAccountService) Register(_ context.Context, email, password, name string) (*models.User, *models.TokenPair, error) {
	m.call(email, password, name)
	return m.user, m.pair, m.err
}

func (m *mockAccountService) Login(_ context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	m.call(email, password)
	return m.user, m.pair, m.err
}

func (m *mockAccountService) Logout(_ context.Context, userID string) error {
	m.call(userID)
	return m.err
}

func (m *mockAccountService) Refresh(_ context.Context, refreshToken string) (*models.User, *models.TokenPair, error) {
	m.call(refreshToken)
	return m.user, m.pair, m.err
}

func (m *mockAccountService) GetUser(_ context.Context, userID string) (*models.User, error) {
	m.call(userID)
	return m.user, m.err
}

func (m *mockAccountService) UpdateProfile(_ context.Context, userID string, name *string, profile *models.Profile) (*models.User, error) {
	m.call(userID)
	m.profileName = name
	m.profile = profile
	return m.user, m.err
}

func (m *mockAccountService) ChangePassword(_ context.Context, userID, currentPassword, newPassword string) error {
	m.call(userID, currentPassword, newPassword)
	return m.err
}

func (m *mockAccountService) DeleteAccount(_ context.Context, userID string) error {
	m.call(userID)
	return m.err
}

func (m *mockAccountService) VerifyEmail(_ context.Context, token string) (*models.User, error) {
	m.call(token)
	return m.user, m.err
}

func (m *mockAccountService) ResendVerificationEmail(_ context.Context, email string) error {
	m.call(email)
	return m.err
}

func (m *mockAccountService) ForgotPassword(_ context.Context, email string) error {
	m.call(email)
	return m.err
}

func (m *mockAccountService) ResetPassword(_ context.Context, token, newPassword string) error {
	m.call(token, newPassword)
	return m.err
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testUser() *models.User {
	age := 30
	return &models.User{
		ID:        "user-1",
		Email:     "alice@example.com",
		Name:      "Alice",
		CreatedAt: testNow,
		Profile:   models.Profile{Age: &age, SkinType: models.SkinTypeDry},
	}
}

func testPair() *models.TokenPair {
	return &models.TokenPair{
		AccessToken:      "access-token",
		RefreshToken:     "refresh-token",
		AccessExpiresAt:  testNow.Add(15 * time.Minute),
		RefreshExpiresAt: testNow.Add(7 * 24 * time.Hour),
	}
}

func newTestHandler(svc *mockAccountService, production bool) *AuthHandler {
	return NewAuthHandler(setupTestLogger(), svc, NewCookieConfig(production, 7*24*time.Hour), production)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) api.Response[T] {
	t.Helper()
	var resp api.Response[T]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func withAuth(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(WithUser(r.Context(), user))
}
