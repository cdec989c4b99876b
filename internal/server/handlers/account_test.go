package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/facialanalyzer/internal/server/session"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

func TestAuthHandler_RequiresUserInContext(t *testing.T) {
	h := newTestHandler(&mockAccountService{}, false)

	handlers := map[string]http.HandlerFunc{
		"logout":   h.Logout,
		"me":       h.Me,
		"profile":  h.UpdateProfile,
		"password": h.ChangePassword,
		"delete":   h.DeleteAccount,
	}

	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			fn(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &mockAccountService{}
	h := newTestHandler(svc, false)

	req := withAuth(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), testUser())
	w := httptest.NewRecorder()
	h.Logout(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user-1"}, svc.calledWith)
	assert.Equal(t, "Logged out successfully", decodeResponse[any](t, w).Message)

	cookie := findCookie(w, api.RefreshTokenCookie)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("user from context", func(t *testing.T) {
		svc := &mockAccountService{}
		h := newTestHandler(svc, false)

		req := withAuth(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), testUser())
		w := httptest.NewRecorder()
		h.Me(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, svc.calledWith, "no extra lookup when middleware loaded the user")

		resp := decodeResponse[api.User](t, w)
		assert.Equal(t, "alice@example.com", resp.Data.Email)
		require.NotNil(t, resp.Data.CreatedAt)
		assert.True(t, testNow.Equal(*resp.Data.CreatedAt))
		require.NotNil(t, resp.Data.Profile)
		assert.Equal(t, 30, *resp.Data.Profile.Age)
	})

	t.Run("lookup by id", func(t *testing.T) {
		svc := &mockAccountService{user: testUser()}
		h := newTestHandler(svc, false)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, "user-1"))
		w := httptest.NewRecorder()
		h.Me(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"user-1"}, svc.calledWith)
	})

	t.Run("deleted user", func(t *testing.T) {
		h := newTestHandler(&mockAccountService{err: session.ErrUserNotFound}, false)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, "gone"))
		w := httptest.NewRecorder()
		h.Me(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", decodeResponse[any](t, w).Error)
	})
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	updated := testUser()
	updated.Name = "Alicia"
	svc := &mockAccountService{user: updated}
	h := newTestHandler(svc, false)

	body := `{"name":"Alicia","profile":{"age":31,"gender":"female","skinType":"oily"}}`
	req := withAuth(httptest.NewRequest(http.MethodPut, "/api/auth/profile", strings.NewReader(body)), testUser())
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.profileName)
	assert.Equal(t, "Alicia", *svc.profileName)
	require.NotNil(t, svc.profile)
	assert.Equal(t, 31, *svc.profile.Age)
	assert.Equal(t, "female", svc.profile.Gender)
	assert.Equal(t, "oily", svc.profile.SkinType)

	resp := decodeResponse[api.User](t, w)
	assert.Equal(t, "Alicia", resp.Data.Name)
}

func TestAuthHandler_UpdateProfile_PartialLeavesNil(t *testing.T) {
	svc := &mockAccountService{user: testUser()}
	h := newTestHandler(svc, false)

	req := withAuth(httptest.NewRequest(http.MethodPut, "/api/auth/profile", strings.NewReader(`{"name":"Al"}`)), testUser())
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.profile)
}

func TestAuthHandler_UpdateProfile_InvalidInput(t *testing.T) {
	svcErr := &session.Error{Kind: session.KindInvalidInput, Message: "Name cannot exceed 50 characters"}
	h := newTestHandler(&mockAccountService{err: svcErr}, false)

	req := withAuth(httptest.NewRequest(http.MethodPut, "/api/auth/profile", strings.NewReader(`{"name":"x"}`)), testUser())
	w := httptest.NewRecorder()
	h.UpdateProfile(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name cannot exceed 50 characters", decodeResponse[any](t, w).Error)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		svcErr     error
		name       string
		body       string
		wantError  string
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"currentPassword":"secret1","newPassword":"secret2"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing fields",
			body:       `{"currentPassword":"secret1"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Current password and new password are required",
		},
		{
			name:       "wrong current password",
			body:       `{"currentPassword":"nope","newPassword":"secret2"}`,
			svcErr:     &session.Error{Kind: session.KindInvalidCredentials, Message: "Current password is incorrect"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Current password is incorrect",
		},
		{
			name:       "store failure",
			body:       `{"currentPassword":"secret1","newPassword":"secret2"}`,
			svcErr:     errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&mockAccountService{err: tt.svcErr}, false)

			req := withAuth(httptest.NewRequest(http.MethodPut, "/api/auth/password", strings.NewReader(tt.body)), testUser())
			w := httptest.NewRecorder()
			h.ChangePassword(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeResponse[any](t, w).Error)
		})
	}
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	svc := &mockAccountService{}
	h := newTestHandler(svc, false)

	req := withAuth(httptest.NewRequest(http.MethodDelete, "/api/auth/account", nil), testUser())
	w := httptest.NewRecorder()
	h.DeleteAccount(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account deleted successfully", decodeResponse[any](t, w).Message)
	assert.NotNil(t, findCookie(w, api.RefreshTokenCookie))
}
