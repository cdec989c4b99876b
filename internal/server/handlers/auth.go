package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/session"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

// Ответы, одинаковые для существующих и несуществующих email
const (
	msgResendGeneric = "If the email exists, a verification link has been sent"
	msgForgotGeneric = "If an account with that email exists, a password reset link has been sent"
)

// AccountService - операции жизненного цикла аккаунта
type AccountService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, *models.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*models.User, *models.TokenPair, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, name *string, profile *models.Profile) (*models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	ResendVerificationEmail(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler обрабатывает запросы /api/auth/*
type AuthHandler struct {
	logger     *slog.Logger
	svc        AccountService
	cookies    CookieConfig
	production bool
}

// NewAuthHandler создает новый handler для авторизации.
// В production тексты внутренних ошибок не отдаются клиенту.
func NewAuthHandler(logger *slog.Logger, svc AccountService, cookies CookieConfig, production bool) *AuthHandler {
	return &AuthHandler{
		logger:     logger,
		svc:        svc,
		cookies:    cookies,
		production: production,
	}
}

// Register обрабатывает POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		WriteError(w, http.StatusBadRequest, "Email, password, and name are required")
		return
	}

	user, pair, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	h.cookies.set(w, pair.RefreshToken, pair.RefreshExpiresAt)
	writeData(w, http.StatusCreated, api.AuthResponse{
		User:                 toAPIUser(user, false),
		AccessToken:          pair.AccessToken,
		AccessTokenExpiresAt: pair.AccessExpiresAt,
		Message:              "Please check your email to verify your account",
	})
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	h.cookies.set(w, pair.RefreshToken, pair.RefreshExpiresAt)
	writeData(w, http.StatusOK, api.AuthResponse{
		User:                 toAPIUser(user, true),
		AccessToken:          pair.AccessToken,
		AccessTokenExpiresAt: pair.AccessExpiresAt,
	})
}

// Refresh обрабатывает POST /api/auth/refresh.
// Refresh токен берется из cookie; при отказе cookie очищается.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(api.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		WriteError(w, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	_, pair, err := h.svc.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if session.KindOf(err) == session.KindInternal {
			// хранилище недоступно - сессию не сбрасываем
			h.fail(w, r, "refresh", err)
			return
		}
		h.logger.WarnContext(r.Context(), "Refresh rejected", slog.String("reason", string(session.KindOf(err))))
		h.cookies.clear(w)
		WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.cookies.set(w, pair.RefreshToken, pair.RefreshExpiresAt)
	writeData(w, http.StatusOK, api.RefreshResponse{
		AccessToken:          pair.AccessToken,
		AccessTokenExpiresAt: pair.AccessExpiresAt,
	})
}

// VerifyEmail обрабатывает POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.svc.VerifyEmail(r.Context(), req.Token); err != nil {
		h.fail(w, r, "verify_email", err)
		return
	}

	writeMessage(w, "Email verified successfully")
}

// ResendVerification обрабатывает POST /api/auth/resend-verification.
// Кроме ошибок ввода ответ всегда одинаковый, чтобы нельзя было
// перебором узнать зарегистрированные адреса.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req api.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	err := h.svc.ResendVerificationEmail(r.Context(), req.Email)
	switch {
	case err == nil:
	case session.KindOf(err) == session.KindInvalidInput:
		h.fail(w, r, "resend_verification", err)
		return
	case errors.Is(err, session.ErrUserNotFound), errors.Is(err, session.ErrAlreadyVerified):
		h.logger.InfoContext(r.Context(), "Verification resend skipped", slog.String("reason", string(session.KindOf(err))))
	default:
		h.logger.ErrorContext(r.Context(), "Verification resend failed", slog.Any("error", err))
	}

	writeMessage(w, msgResendGeneric)
}

// ForgotPassword обрабатывает POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req api.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		if session.KindOf(err) == session.KindInvalidInput {
			h.fail(w, r, "forgot_password", err)
			return
		}
		h.logger.ErrorContext(r.Context(), "Password reset request failed", slog.Any("error", err))
	}

	writeMessage(w, msgForgotGeneric)
}

// ResetPassword обрабатывает POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Token == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Token and new password are required")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.fail(w, r, "reset_password", err)
		return
	}

	writeMessage(w, "Password reset successfully")
}

// fail логирует ошибку и отправляет ответ со статусом по ее виду
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	kind := session.KindOf(err)
	status := StatusFor(kind)

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		message := msgInternal
		if !h.production {
			message = err.Error()
		}
		WriteError(w, status, message)
		return
	}

	h.logger.WarnContext(r.Context(), "Request rejected",
		slog.String("operation", operation),
		slog.String("kind", string(kind)),
	)
	WriteError(w, status, err.Error())
}
