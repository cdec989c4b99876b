package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/facialanalyzer/pkg/api"
)

// StatusError - ответ сервера с кодом вне 2xx
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// AuthResult - ответ register/login вместе с refresh токеном из cookie
type AuthResult struct {
	api.AuthResponse
	RefreshToken string
}

// RefreshResult - новая пара токенов после /refresh
type RefreshResult struct {
	api.RefreshResponse
	RefreshToken string
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*AuthResult, error) {
	var data api.AuthResponse
	refresh, err := c.doRequest(ctx, call{method: http.MethodPost, path: "/api/auth/register", body: req}, &data)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &AuthResult{AuthResponse: data, RefreshToken: refresh}, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*AuthResult, error) {
	var data api.AuthResponse
	refresh, err := c.doRequest(ctx, call{method: http.MethodPost, path: "/api/auth/login", body: req}, &data)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &AuthResult{AuthResponse: data, RefreshToken: refresh}, nil
}

// Refresh обменивает refresh токен на новую пару
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	var data api.RefreshResponse
	refresh, err := c.doRequest(ctx, call{method: http.MethodPost, path: "/api/auth/refresh", refreshToken: refreshToken}, &data)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &RefreshResult{RefreshResponse: data, RefreshToken: refresh}, nil
}

// Logout отзывает все refresh токены пользователя
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	_, err := c.doRequest(ctx, call{
		method:       http.MethodPost,
		path:         "/api/auth/logout",
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}, nil)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me возвращает текущего пользователя
func (c *Client) Me(ctx context.Context, accessToken string) (*api.User, error) {
	var user api.User
	if _, err := c.doRequest(ctx, call{method: http.MethodGet, path: "/api/auth/me", accessToken: accessToken}, &user); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &user, nil
}

// UpdateProfile обновляет имя и/или профиль
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, req api.UpdateProfileRequest) (*api.User, error) {
	var user api.User
	if _, err := c.doRequest(ctx, call{
		method:      http.MethodPut,
		path:        "/api/auth/profile",
		accessToken: accessToken,
		body:        req,
	}, &user); err != nil {
		return nil, fmt.Errorf("update profile request failed: %w", err)
	}
	return &user, nil
}

// ChangePassword меняет пароль авторизованного пользователя
func (c *Client) ChangePassword(ctx context.Context, accessToken string, req api.ChangePasswordRequest) (string, error) {
	return c.message(ctx, "change password", call{
		method:      http.MethodPut,
		path:        "/api/auth/password",
		accessToken: accessToken,
		body:        req,
	})
}

// DeleteAccount удаляет аккаунт
func (c *Client) DeleteAccount(ctx context.Context, accessToken string) (string, error) {
	return c.message(ctx, "delete account", call{
		method:      http.MethodDelete,
		path:        "/api/auth/account",
		accessToken: accessToken,
	})
}

// VerifyEmail подтверждает email токеном из письма
func (c *Client) VerifyEmail(ctx context.Context, token string) (string, error) {
	return c.message(ctx, "verify email", call{
		method: http.MethodPost,
		path:   "/api/auth/verify-email",
		body:   api.VerifyEmailRequest{Token: token},
	})
}

// ResendVerification запрашивает повторное письмо подтверждения
func (c *Client) ResendVerification(ctx context.Context, email string) (string, error) {
	return c.message(ctx, "resend verification", call{
		method: http.MethodPost,
		path:   "/api/auth/resend-verification",
		body:   api.EmailRequest{Email: email},
	})
}

// ForgotPassword запрашивает письмо для сброса пароля
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, "forgot password", call{
		method: http.MethodPost,
		path:   "/api/auth/forgot-password",
		body:   api.EmailRequest{Email: email},
	})
}

// ResetPassword устанавливает новый пароль по токену из письма
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	return c.message(ctx, "reset password", call{
		method: http.MethodPost,
		path:   "/api/auth/reset-password",
		body:   api.ResetPasswordRequest{Token: token, Password: password},
	})
}

// Health запрашивает состояние сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// 503 тоже содержит тело со статусом
	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, nil
}

type call struct {
	body         any
	method       string
	path         string
	accessToken  string
	refreshToken string
}

func (c *Client) message(ctx context.Context, op string, cl call) (string, error) {
	var env api.Response[json.RawMessage]
	if err := c.send(ctx, cl, &env, nil); err != nil {
		return "", fmt.Errorf("%s request failed: %w", op, err)
	}
	return env.Message, nil
}

// doRequest выполняет запрос и раскрывает конверт ответа в result.
// Возвращает значение refresh cookie, если сервер его установил.
func (c *Client) doRequest(ctx context.Context, cl call, result any) (string, error) {
	var env api.Response[json.RawMessage]
	var refresh string
	if err := c.send(ctx, cl, &env, &refresh); err != nil {
		return "", err
	}

	if result != nil {
		if len(env.Data) == 0 {
			return "", fmt.Errorf("response has no data")
		}
		if err := json.Unmarshal(env.Data, result); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return refresh, nil
}

func (c *Client) send(ctx context.Context, cl call, env *api.Response[json.RawMessage], refresh *string) error {
	var bodyReader io.Reader
	if cl.body != nil {
		jsonData, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+cl.accessToken)
	}
	if cl.refreshToken != "" {
		req.AddCookie(&http.Cookie{Name: api.RefreshTokenCookie, Value: cl.refreshToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.Response[json.RawMessage]
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if refresh != nil {
		for _, cookie := range resp.Cookies() {
			if cookie.Name == api.RefreshTokenCookie && cookie.MaxAge >= 0 {
				*refresh = cookie.Value
			}
		}
	}
	return nil
}
