// Package session implements the account lifecycle: registration, login,
// token refresh with token-version revocation, email verification and
// password reset.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/iudanet/facialanalyzer/internal/crypto"
	"github.com/iudanet/facialanalyzer/internal/models"
	"github.com/iudanet/facialanalyzer/internal/server/metrics"
	"github.com/iudanet/facialanalyzer/internal/server/notify"
	"github.com/iudanet/facialanalyzer/internal/server/storage"
	"github.com/iudanet/facialanalyzer/internal/server/token"
)

// Default lifetimes of one-time tokens.
const (
	DefaultVerificationTTL = 24 * time.Hour
	DefaultResetTTL        = time.Hour
	DefaultNotifyTimeout   = 30 * time.Second
)

// dummyPassword is hashed once and compared against when a login email is unknown,
// so that unknown and known emails take the same time.
const dummyPassword = "facialanalyzer-dummy-password"

// TokenIssuer issues and verifies JWT pairs.
type TokenIssuer interface {
	IssueTokenPair(user *models.User) (*models.TokenPair, error)
	VerifyRefreshToken(tokenString string) (*token.RefreshClaims, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// Service implements the account operations.
type Service struct {
	store           storage.UserStorage
	tokens          TokenIssuer
	notifier        notify.Notifier
	hasher          PasswordHasher
	logger          *slog.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
	generateToken   func() (string, error)
	dummyHash       string
	wg              sync.WaitGroup
	dummyOnce       sync.Once
	verificationTTL time.Duration
	resetTTL        time.Duration
	notifyTimeout   time.Duration
	revokeOnChange  bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTokenGenerator overrides the opaque token generator (email links).
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.generateToken = gen }
}

// WithPasswordHasher overrides the bcrypt hasher.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithMetrics enables operation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithVerificationTTL sets the lifetime of email verification tokens.
func WithVerificationTTL(d time.Duration) Option {
	return func(s *Service) { s.verificationTTL = d }
}

// WithResetTTL sets the lifetime of password reset tokens.
func WithResetTTL(d time.Duration) Option {
	return func(s *Service) { s.resetTTL = d }
}

// WithNotifyTimeout bounds each email delivery.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) { s.notifyTimeout = d }
}

// WithSessionRevocationOnPasswordChange makes ChangePassword and ResetPassword
// bump the token version, logging out every other device.
func WithSessionRevocationOnPasswordChange(revoke bool) Option {
	return func(s *Service) { s.revokeOnChange = revoke }
}

// NewService creates the account service.
func NewService(
	store storage.UserStorage,
	tokens TokenIssuer,
	notifier notify.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:           store,
		tokens:          tokens,
		notifier:        notifier,
		hasher:          crypto.NewPasswordHasher(crypto.DefaultBcryptCost),
		logger:          logger,
		now:             time.Now,
		generateToken:   crypto.GenerateToken,
		verificationTTL: DefaultVerificationTTL,
		resetTTL:        DefaultResetTTL,
		notifyTimeout:   DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until all background email deliveries have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// newOpaqueToken returns the plaintext token for the email and its digest for storage.
func (s *Service) newOpaqueToken() (string, string, error) {
	plain, err := s.generateToken()
	if err != nil {
		return "", "", err
	}
	hash, err := crypto.HashToken(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hash, nil
}

func (s *Service) getDummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Error("Failed to compute dummy password hash", slog.Any("error", err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// sendAsync delivers an email in the background. The request context is
// detached so that the response does not cancel the delivery.
func (s *Service) sendAsync(ctx context.Context, kind, email string, send func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to send email",
				slog.String("kind", kind),
				slog.String("email", email),
				slog.Any("error", err),
			)
		}
	}()
}

// internal wraps an unexpected failure with a code and the operation name.
func internal(code, operation string, err error) error {
	return oops.Code(code).With("operation", operation).Wrap(err)
}

// observe records the outcome of an operation.
func (s *Service) observe(operation string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = string(KindOf(err))
	}
	s.metrics.RecordAuthOperation(operation, result)
}
