// Package session управляет сессией CLI-клиента: вход, хранение токенов
// в локальной БД и прозрачное обновление access токена.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/facialanalyzer/internal/client/api"
	"github.com/iudanet/facialanalyzer/internal/client/storage"
	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/validation"
	pkgapi "github.com/iudanet/facialanalyzer/pkg/api"
)

//go:generate moq -out api_mock.go . API

// refreshSkew - access токен обновляется заранее, если до истечения осталось меньше
const refreshSkew = 30 * time.Second

// ErrNotLoggedIn возвращается авторизованными операциями без сохраненной сессии
var ErrNotLoggedIn = errors.New("not logged in, run 'login' first")

// API - методы сервера, которые использует клиент
type API interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*api.AuthResult, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*api.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*api.RefreshResult, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*pkgapi.User, error)
	UpdateProfile(ctx context.Context, accessToken string, req pkgapi.UpdateProfileRequest) (*pkgapi.User, error)
	ChangePassword(ctx context.Context, accessToken string, req pkgapi.ChangePasswordRequest) (string, error)
	DeleteAccount(ctx context.Context, accessToken string) (string, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
}

// Service предоставляет операции аккаунта поверх API и локального хранилища.
// Состояние сессии живет только в store и передается между вызовами явно.
type Service struct {
	api       API
	store     storage.SessionStorage
	logger    *slog.Logger
	now       func() time.Time
	serverURL string
}

// NewService создает новый сервис сессии
func NewService(client API, store storage.SessionStorage, serverURL string, logger *slog.Logger) *Service {
	return &Service{
		api:       client,
		store:     store,
		logger:    logger,
		now:       time.Now,
		serverURL: serverURL,
	}
}

// Register регистрирует пользователя и сохраняет полученную сессию
func (s *Service) Register(ctx context.Context, email, password, name string) (*storage.SessionData, string, error) {
	email = validation.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", fmt.Errorf("invalid password: %w", err)
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, "", fmt.Errorf("invalid name: %w", err)
	}

	resp, err := s.api.Register(ctx, pkgapi.RegisterRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, "", fmt.Errorf("registration failed: %w", err)
	}

	session, err := s.saveAuth(ctx, resp)
	if err != nil {
		return nil, "", err
	}
	return session, resp.Message, nil
}

// Login выполняет вход и сохраняет сессию
func (s *Service) Login(ctx context.Context, email, password string) (*storage.SessionData, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	resp, err := s.api.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return s.saveAuth(ctx, resp)
}

// Logout отзывает токены на сервере и удаляет локальную сессию.
// Локальная сессия удаляется даже если сервер недоступен.
func (s *Service) Logout(ctx context.Context) error {
	current, err := s.current(ctx)
	if err != nil {
		return err
	}

	serverErr := s.authorized(ctx, current, func(access string) error {
		return s.api.Logout(ctx, access, current.RefreshToken)
	})
	if serverErr != nil {
		s.logger.WarnContext(ctx, "Server logout failed, removing local session anyway", slog.Any("error", serverErr))
	}

	if err := s.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	// истекшая на сервере сессия и так недействительна
	if serverErr != nil && !api.IsUnauthorized(serverErr) {
		return fmt.Errorf("local session removed, server logout failed: %w", serverErr)
	}
	return nil
}

// Status возвращает сохраненную сессию без обращения к серверу
func (s *Service) Status(ctx context.Context) (*storage.SessionData, error) {
	return s.current(ctx)
}

// Refresh принудительно обновляет пару токенов
func (s *Service) Refresh(ctx context.Context) (*storage.SessionData, error) {
	current, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Me загружает пользователя с сервера и обновляет снимок в сессии
func (s *Service) Me(ctx context.Context) (*pkgapi.User, error) {
	current, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	var user *pkgapi.User
	err = s.authorized(ctx, current, func(access string) error {
		user, err = s.api.Me(ctx, access)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, current, user)
	return user, nil
}

// UpdateProfile обновляет имя и/или профиль; nil поля не меняются
func (s *Service) UpdateProfile(ctx context.Context, name *string, profile *models.Profile) (*pkgapi.User, error) {
	req := pkgapi.UpdateProfileRequest{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := validation.ValidateName(trimmed); err != nil {
			return nil, fmt.Errorf("invalid name: %w", err)
		}
		req.Name = &trimmed
	}
	if profile != nil {
		if err := validation.ValidateProfile(*profile); err != nil {
			return nil, fmt.Errorf("invalid profile: %w", err)
		}
		req.Profile = &pkgapi.Profile{Age: profile.Age, Gender: profile.Gender, SkinType: profile.SkinType}
	}
	if req.Name == nil && req.Profile == nil {
		return nil, fmt.Errorf("nothing to update")
	}

	current, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	var user *pkgapi.User
	err = s.authorized(ctx, current, func(access string) error {
		user, err = s.api.UpdateProfile(ctx, access, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, current, user)
	return user, nil
}

// ChangePassword меняет пароль текущего пользователя
func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return "", fmt.Errorf("invalid password: %w", err)
	}

	current, err := s.current(ctx)
	if err != nil {
		return "", err
	}

	var msg string
	err = s.authorized(ctx, current, func(access string) error {
		msg, err = s.api.ChangePassword(ctx, access, pkgapi.ChangePasswordRequest{
			CurrentPassword: currentPassword,
			NewPassword:     newPassword,
		})
		return err
	})
	return msg, err
}

// DeleteAccount удаляет аккаунт на сервере и локальную сессию
func (s *Service) DeleteAccount(ctx context.Context) (string, error) {
	current, err := s.current(ctx)
	if err != nil {
		return "", err
	}

	var msg string
	err = s.authorized(ctx, current, func(access string) error {
		msg, err = s.api.DeleteAccount(ctx, access)
		return err
	})
	if err != nil {
		return "", err
	}

	if err := s.store.DeleteSession(ctx); err != nil {
		return "", fmt.Errorf("failed to delete session: %w", err)
	}
	return msg, nil
}

// VerifyEmail подтверждает email; сессия, если есть, помечается подтвержденной
func (s *Service) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("token is required")
	}

	msg, err := s.api.VerifyEmail(ctx, token)
	if err != nil {
		return "", err
	}

	// какой аккаунт подтвержден, сервер не сообщает - уточняем через /me
	if current, err := s.store.GetSession(ctx); err == nil && !current.EmailVerified {
		if _, err := s.Me(ctx); err != nil {
			s.logger.DebugContext(ctx, "Failed to reload user after verification", slog.Any("error", err))
		}
	}
	return msg, nil
}

// ResendVerification запрашивает повторное письмо подтверждения
func (s *Service) ResendVerification(ctx context.Context, email string) (string, error) {
	email, err := s.emailOrSession(ctx, email)
	if err != nil {
		return "", err
	}
	return s.api.ResendVerification(ctx, email)
}

// ForgotPassword запрашивает письмо для сброса пароля
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email, err := s.emailOrSession(ctx, email)
	if err != nil {
		return "", err
	}
	return s.api.ForgotPassword(ctx, email)
}

// ResetPassword устанавливает новый пароль по токену из письма
func (s *Service) ResetPassword(ctx context.Context, token, password string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("token is required")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("invalid password: %w", err)
	}
	return s.api.ResetPassword(ctx, token, password)
}

func (s *Service) current(ctx context.Context) (*storage.SessionData, error) {
	current, err := s.store.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return current, nil
}

// authorized вызывает call с действующим access токеном.
// Токен обновляется не больше одного раза: заранее, если он истек,
// или после ответа 401.
func (s *Service) authorized(ctx context.Context, current *storage.SessionData, call func(access string) error) error {
	refreshed := false
	if current.AccessExpired(s.now(), refreshSkew) {
		if err := s.refresh(ctx, current); err != nil {
			return err
		}
		refreshed = true
	}

	err := call(current.AccessToken)
	if err == nil || refreshed || !api.IsUnauthorized(err) {
		return err
	}

	if err := s.refresh(ctx, current); err != nil {
		return err
	}
	return call(current.AccessToken)
}

// refresh обновляет токены в current и сохраняет их.
// Отклоненный refresh токен означает конец сессии.
func (s *Service) refresh(ctx context.Context, current *storage.SessionData) error {
	resp, err := s.api.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if api.IsUnauthorized(err) {
			if delErr := s.store.DeleteSession(ctx); delErr != nil {
				s.logger.WarnContext(ctx, "Failed to delete expired session", slog.Any("error", delErr))
			}
			return fmt.Errorf("session expired, please log in again: %w", err)
		}
		return err
	}

	current.AccessToken = resp.AccessToken
	current.AccessExpiresAt = resp.AccessTokenExpiresAt
	if resp.RefreshToken != "" {
		current.RefreshToken = resp.RefreshToken
	}
	current.SavedAt = s.now()

	if err := s.store.SaveSession(ctx, current); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.DebugContext(ctx, "Access token refreshed", slog.Time("expires_at", current.AccessExpiresAt))
	return nil
}

func (s *Service) saveAuth(ctx context.Context, resp *api.AuthResult) (*storage.SessionData, error) {
	session := &storage.SessionData{
		ServerURL:       s.serverURL,
		UserID:          resp.User.ID,
		Email:           resp.User.Email,
		Name:            resp.User.Name,
		EmailVerified:   resp.User.IsEmailVerified,
		AccessToken:     resp.AccessToken,
		AccessExpiresAt: resp.AccessTokenExpiresAt,
		RefreshToken:    resp.RefreshToken,
		SavedAt:         s.now(),
	}
	if session.RefreshToken == "" {
		s.logger.WarnContext(ctx, "Server did not set a refresh cookie, session cannot be refreshed")
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// remember обновляет снимок пользователя в сессии; ошибка сохранения не критична
func (s *Service) remember(ctx context.Context, current *storage.SessionData, user *pkgapi.User) {
	current.Email = user.Email
	current.Name = user.Name
	current.EmailVerified = user.IsEmailVerified
	if err := s.store.SaveSession(ctx, current); err != nil {
		s.logger.WarnContext(ctx, "Failed to update session", slog.Any("error", err))
	}
}

func (s *Service) emailOrSession(ctx context.Context, email string) (string, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		if current, err := s.store.GetSession(ctx); err == nil {
			email = current.Email
		}
	}
	if err := validation.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("invalid email: %w", err)
	}
	return email, nil
}
