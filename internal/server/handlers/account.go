package handlers

import (
	"net/http"

	"github.com/iudanet/facialanalyzer/internal/server/session"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

// Обработчики ниже требуют auth middleware: user_id берется из контекста.

// Logout обрабатывает POST /api/auth/logout.
// Инвалидирует все refresh токены пользователя.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	if err := h.svc.Logout(r.Context(), userID); err != nil {
		h.fail(w, r, "logout", err)
		return
	}

	h.cookies.clear(w)
	writeMessage(w, "Logged out successfully")
}

// Me обрабатывает GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUser(r.Context())
	if !ok {
		userID, ok := GetUserID(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		var err error
		if user, err = h.svc.GetUser(r.Context(), userID); err != nil {
			h.fail(w, r, "get_user", err)
			return
		}
	}

	writeData(w, http.StatusOK, toAPIUser(user, true))
}

// UpdateProfile обрабатывает PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req api.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), userID, req.Name, toModelProfile(req.Profile))
	if err != nil {
		h.fail(w, r, "update_profile", err)
		return
	}

	writeData(w, http.StatusOK, toAPIUser(user, true))
}

// ChangePassword обрабатывает PUT /api/auth/password.
// Неверный текущий пароль - 400, как и прочие ошибки формы.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req api.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		WriteError(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if session.KindOf(err) == session.KindInvalidCredentials {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, "change_password", err)
		return
	}

	writeMessage(w, "Password changed successfully")
}

// DeleteAccount обрабатывает DELETE /api/auth/account
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), userID); err != nil {
		h.fail(w, r, "delete_account", err)
		return
	}

	h.cookies.clear(w)
	writeMessage(w, "Account deleted successfully")
}
