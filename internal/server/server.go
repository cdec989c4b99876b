// Package server собирает HTTP API аккаунтов: маршруты, цепочку middleware
// и жизненный цикл http.Server.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/iudanet/facialanalyzer/internal/server/handlers"
	"github.com/iudanet/facialanalyzer/internal/server/metrics"
	"github.com/iudanet/facialanalyzer/internal/server/middleware"
)

// Таймауты http.Server
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 120 * time.Second
)

// Config - параметры HTTP слоя
type Config struct {
	Addr            string
	ClientURL       string
	Version         string
	AuthRateLimit   int
	GlobalRateLimit int
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration
	TrustedProxies  int // число прокси перед сервером; 0 - клиенты подключаются напрямую
	Production      bool
}

// AccountService - сервис аккаунтов, которым пользуются handlers и auth middleware
type AccountService interface {
	handlers.AccountService
	// Wait дожидается фоновой отправки писем
	Wait()
}

// Deps - зависимости сервера
type Deps struct {
	Accounts AccountService
	Tokens   middleware.TokenVerifier
	DB       handlers.Pinger
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Server - HTTP сервер API
type Server struct {
	cfg        Config
	deps       Deps
	handler    http.Handler
	httpServer *http.Server
	limiters   []*middleware.RateLimiter
}

// New создает сервер и собирает маршруты
func New(cfg Config, deps Deps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	s.handler = s.routes()
	return s
}

// Handler returns the full middleware chain; used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) newLimiter(rate int) *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(rate, s.cfg.RateLimitWindow, s.deps.Logger).
		TrustProxies(s.cfg.TrustedProxies)
	s.limiters = append(s.limiters, rl)
	return rl
}

func (s *Server) routes() http.Handler {
	logger := s.deps.Logger

	auth := handlers.NewAuthHandler(
		logger,
		s.deps.Accounts,
		handlers.NewCookieConfig(s.cfg.Production, s.refreshTTL()),
		s.cfg.Production,
	)
	health := handlers.NewHealthHandler(logger, s.deps.DB, s.cfg.Version)

	authLimit := s.newLimiter(s.cfg.AuthRateLimit).Middleware()
	requireAuth := middleware.AuthMiddleware(logger, s.deps.Tokens, s.deps.Accounts)

	limited := func(h http.HandlerFunc) http.Handler { return authLimit(h) }
	protected := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }

	mux := http.NewServeMux()

	// Публичные маршруты
	mux.Handle("POST /api/auth/register", limited(auth.Register))
	mux.Handle("POST /api/auth/login", limited(auth.Login))
	mux.HandleFunc("POST /api/auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/auth/verify-email", auth.VerifyEmail)
	mux.Handle("POST /api/auth/resend-verification", limited(auth.ResendVerification))
	mux.Handle("POST /api/auth/forgot-password", limited(auth.ForgotPassword))
	mux.Handle("POST /api/auth/reset-password", limited(auth.ResetPassword))

	// Требуют access токен
	mux.Handle("POST /api/auth/logout", protected(auth.Logout))
	mux.Handle("GET /api/auth/me", protected(auth.Me))
	mux.Handle("PUT /api/auth/profile", protected(auth.UpdateProfile))
	mux.Handle("PUT /api/auth/password", protected(auth.ChangePassword))
	mux.Handle("DELETE /api/auth/account", protected(auth.DeleteAccount))

	mux.HandleFunc("GET /api/health", health.Health)
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "Not found")
	})

	// recovery -> request id -> logging -> metrics -> CORS -> global limit -> mux
	var h http.Handler = mux
	h = s.newLimiter(s.cfg.GlobalRateLimit).Middleware()(h)
	h = middleware.CORSMiddleware(s.cfg.ClientURL)(h)
	h = middleware.MetricsMiddleware(s.deps.Metrics)(h)
	h = middleware.LoggingWithSkip(logger, []string{"/api/health", "/metrics"})(h)
	h = middleware.RequestIDMiddleware()(h)
	h = middleware.RecoveryMiddleware(logger)(h)
	return h
}

// refreshTTL берется у сервиса токенов, если он его сообщает
func (s *Server) refreshTTL() time.Duration {
	if r, ok := s.deps.Tokens.(interface{ RefreshTTL() time.Duration }); ok {
		return r.RefreshTTL()
	}
	return 7 * 24 * time.Hour
}

// Run слушает cfg.Addr до отмены ctx, затем корректно останавливается.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return oops.Code("SERVER_LISTEN_FAILED").With("addr", s.cfg.Addr).Wrap(err)
	}
	return s.Serve(ctx, listener)
}

// Serve обслуживает listener до отмены ctx.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.deps.Logger.Handler(), slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.deps.Logger.InfoContext(ctx, "HTTP server started", slog.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		s.stopBackground()
		return oops.Code("SERVER_FAILED").Wrap(err)
	case <-ctx.Done():
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.deps.Logger.Info("Shutting down HTTP server")

	err := s.httpServer.Shutdown(shutdownCtx)
	s.stopBackground()

	if err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}
	s.deps.Logger.Info("HTTP server stopped")
	return nil
}

// Close освобождает фоновые ресурсы сервера, который не запускался через
// Run или Serve (например, когда используется только Handler).
func (s *Server) Close() {
	s.stopBackground()
}

// stopBackground останавливает limiters и ждет отправки писем
func (s *Server) stopBackground() {
	for _, rl := range s.limiters {
		rl.Stop()
	}
	s.deps.Accounts.Wait()
}
