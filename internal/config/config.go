// Package config loads server and mailer settings.
//
// Values are layered: built-in defaults, then a .env file (skipped in
// production), then environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Mail transports.
const (
	MailTransportLog   = "log"
	MailTransportSMTP  = "smtp"
	MailTransportKafka = "kafka"
)

// EnvProduction is the APP_ENV value that enables production behavior.
const EnvProduction = "production"

// Insecure development defaults; Validate rejects them in production.
const (
	defaultJWTSecret        = "dev-access-secret-change-me"
	defaultJWTRefreshSecret = "dev-refresh-secret-change-me"
)

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	User     string
	Password string
	Port     int
	Secure   bool // implicit TLS (port 465)
}

// KafkaConfig holds broker settings shared by the producer and the mailer.
type KafkaConfig struct {
	Topic    string
	GroupID  string
	Username string
	Password string
	Brokers  []string
	TLS      bool
}

// Config holds runtime settings for the server and the mailer.
type Config struct {
	AppEnv                         string
	ClientURL                      string
	DatabasePath                   string
	JWTSecret                      string
	JWTRefreshSecret               string
	LogFormat                      string
	LogLevel                       string
	MailTransport                  string
	EmailFrom                      string
	EnvFile                        string
	Kafka                          KafkaConfig
	SMTP                           SMTPConfig
	JWTExpiresIn                   time.Duration
	JWTRefreshExpiresIn            time.Duration
	RateLimitWindow                time.Duration
	VerificationTokenTTL           time.Duration
	ResetTokenTTL                  time.Duration
	NotifyTimeout                  time.Duration
	ShutdownTimeout                time.Duration
	Port                           int
	AuthRateLimit                  int
	GlobalRateLimit                int
	TrustProxy                     int
	RevokeSessionsOnPasswordChange bool
}

// Defaults returns development defaults.
func Defaults() Config {
	return Config{
		AppEnv:               "development",
		ClientURL:            "http://localhost:5173",
		DatabasePath:         "facialanalyzer.db",
		JWTSecret:            defaultJWTSecret,
		JWTRefreshSecret:     defaultJWTRefreshSecret,
		LogFormat:            "text",
		LogLevel:             "info",
		MailTransport:        MailTransportLog,
		EmailFrom:            "noreply@facial-analyzer.com",
		EnvFile:              ".env",
		JWTExpiresIn:         15 * time.Minute,
		JWTRefreshExpiresIn:  7 * 24 * time.Hour,
		RateLimitWindow:      15 * time.Minute,
		VerificationTokenTTL: 24 * time.Hour,
		ResetTokenTTL:        time.Hour,
		NotifyTimeout:        30 * time.Second,
		ShutdownTimeout:      15 * time.Second,
		Port:                 5000,
		AuthRateLimit:        5,
		GlobalRateLimit:      100,
		SMTP: SMTPConfig{
			Port: 587,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "account.notifications",
			GroupID: "facial-mailer",
		},
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// BindFlags registers command-line flags bound to c. Call before parsing;
// current field values become flag defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	for _, b := range c.bindings() {
		if b.flag == "" {
			continue
		}
		fs.Var(b.value, b.flag, b.usage)
	}
	fs.StringVar(&c.EnvFile, "env-file", c.EnvFile, "path to .env file (ignored in production)")
}

// Load applies the .env file and environment variables on top of c, without
// overriding flags explicitly set in fs (fs may be nil), and validates the result.
func (c *Config) Load(fs *pflag.FlagSet) error {
	if os.Getenv("APP_ENV") != EnvProduction && c.EnvFile != "" {
		// godotenv.Load не перезаписывает уже заданные переменные окружения
		if err := godotenv.Load(c.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", c.EnvFile, err)
		}
	}

	if err := c.applyEnv(fs, os.LookupEnv); err != nil {
		return err
	}

	return c.Validate()
}

func (c *Config) applyEnv(fs *pflag.FlagSet, lookup func(string) (string, bool)) error {
	for _, b := range c.bindings() {
		if fs != nil && b.flag != "" && fs.Changed(b.flag) {
			continue
		}
		raw, ok := lookup(b.env)
		if !ok || raw == "" {
			continue
		}
		if err := b.value.Set(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", b.env, err)
		}
	}
	return nil
}

// Validate rejects configurations that are unsafe or inconsistent.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET are required"))
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.IsProduction() && (c.JWTSecret == defaultJWTSecret || c.JWTRefreshSecret == defaultJWTRefreshSecret) {
		errs = append(errs, errors.New("default JWT secrets are not allowed in production"))
	}
	if c.JWTExpiresIn <= 0 || c.JWTRefreshExpiresIn <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.AuthRateLimit <= 0 || c.GlobalRateLimit <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.TrustProxy < 0 {
		errs = append(errs, fmt.Errorf("TRUST_PROXY must not be negative, got %d", c.TrustProxy))
	}
	if c.VerificationTokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("VERIFICATION_TOKEN_TTL and RESET_TOKEN_TTL must be positive"))
	}

	switch c.MailTransport {
	case MailTransportLog:
	case MailTransportSMTP:
		if c.SMTP.Host == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for smtp transport"))
		}
	case MailTransportKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required for kafka transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_TRANSPORT %q (want log, smtp or kafka)", c.MailTransport))
	}

	return errors.Join(errs...)
}

// binding связывает переменную окружения и флаг с полем конфигурации
type binding struct {
	value pflag.Value
	env   string
	flag  string
	usage string
}

func (c *Config) bindings() []binding {
	return []binding{
		{env: "PORT", flag: "port", usage: "HTTP port", value: newIntValue(&c.Port)},
		{env: "APP_ENV", flag: "env", usage: "environment (development, production)", value: newStringValue(&c.AppEnv)},
		{env: "CLIENT_URL", flag: "client-url", usage: "web client origin (CORS, email links)", value: newStringValue(&c.ClientURL)},
		{env: "DATABASE_PATH", flag: "database", usage: "SQLite database path", value: newStringValue(&c.DatabasePath)},
		{env: "JWT_SECRET", usage: "access token secret", value: newStringValue(&c.JWTSecret)},
		{env: "JWT_REFRESH_SECRET", usage: "refresh token secret", value: newStringValue(&c.JWTRefreshSecret)},
		{env: "JWT_EXPIRES_IN", flag: "access-ttl", usage: "access token lifetime (15m, 1h)", value: newDurationValue(&c.JWTExpiresIn)},
		{env: "JWT_REFRESH_EXPIRES_IN", flag: "refresh-ttl", usage: "refresh token lifetime (7d)", value: newDurationValue(&c.JWTRefreshExpiresIn)},
		{env: "LOG_FORMAT", flag: "log-format", usage: "log format (json, text)", value: newStringValue(&c.LogFormat)},
		{env: "LOG_LEVEL", flag: "log-level", usage: "log level (debug, info, warn, error)", value: newStringValue(&c.LogLevel)},
		{env: "MAIL_TRANSPORT", flag: "mail-transport", usage: "mail transport (log, smtp, kafka)", value: newStringValue(&c.MailTransport)},
		{env: "EMAIL_FROM", flag: "email-from", usage: "sender address", value: newStringValue(&c.EmailFrom)},
		{env: "SMTP_HOST", flag: "smtp-host", usage: "SMTP host", value: newStringValue(&c.SMTP.Host)},
		{env: "SMTP_PORT", flag: "smtp-port", usage: "SMTP port", value: newIntValue(&c.SMTP.Port)},
		{env: "SMTP_USER", usage: "SMTP user", value: newStringValue(&c.SMTP.User)},
		{env: "SMTP_PASS", usage: "SMTP password", value: newStringValue(&c.SMTP.Password)},
		{env: "SMTP_SECURE", flag: "smtp-secure", usage: "use implicit TLS for SMTP", value: newBoolValue(&c.SMTP.Secure)},
		{env: "KAFKA_BROKERS", flag: "kafka-brokers", usage: "comma-separated Kafka brokers", value: newListValue(&c.Kafka.Brokers)},
		{env: "KAFKA_TOPIC", flag: "kafka-topic", usage: "notification topic", value: newStringValue(&c.Kafka.Topic)},
		{env: "KAFKA_GROUP_ID", flag: "kafka-group", usage: "mailer consumer group", value: newStringValue(&c.Kafka.GroupID)},
		{env: "KAFKA_USERNAME", usage: "Kafka SASL user", value: newStringValue(&c.Kafka.Username)},
		{env: "KAFKA_PASSWORD", usage: "Kafka SASL password", value: newStringValue(&c.Kafka.Password)},
		{env: "KAFKA_TLS", flag: "kafka-tls", usage: "use TLS for Kafka", value: newBoolValue(&c.Kafka.TLS)},
		{env: "AUTH_RATE_LIMIT", flag: "auth-rate-limit", usage: "auth requests per window per IP", value: newIntValue(&c.AuthRateLimit)},
		{env: "GLOBAL_RATE_LIMIT", flag: "global-rate-limit", usage: "requests per window per IP", value: newIntValue(&c.GlobalRateLimit)},
		{env: "RATE_LIMIT_WINDOW", flag: "rate-limit-window", usage: "rate limit window", value: newDurationValue(&c.RateLimitWindow)},
		{env: "TRUST_PROXY", flag: "trust-proxy", usage: "number of reverse proxies whose X-Forwarded-For is trusted (0 = none)", value: newIntValue(&c.TrustProxy)},
		{env: "VERIFICATION_TOKEN_TTL", flag: "verification-ttl", usage: "email verification link lifetime", value: newDurationValue(&c.VerificationTokenTTL)},
		{env: "RESET_TOKEN_TTL", flag: "reset-ttl", usage: "password reset link lifetime", value: newDurationValue(&c.ResetTokenTTL)},
		{env: "REVOKE_SESSIONS_ON_PASSWORD_CHANGE", flag: "revoke-sessions-on-password-change", usage: "log out other devices on password change/reset", value: newBoolValue(&c.RevokeSessionsOnPasswordChange)},
		{env: "NOTIFY_TIMEOUT", flag: "notify-timeout", usage: "email delivery timeout", value: newDurationValue(&c.NotifyTimeout)},
		{env: "SHUTDOWN_TIMEOUT", flag: "shutdown-timeout", usage: "graceful shutdown timeout", value: newDurationValue(&c.ShutdownTimeout)},
	}
}

// ParseDuration accepts Go durations plus a day suffix ("7d", "1.5d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		d, err := time.ParseDuration(days + "h")
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return d * 24, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
