package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/iudanet/facialanalyzer/internal/config"
	"github.com/iudanet/facialanalyzer/internal/logging"
	"github.com/iudanet/facialanalyzer/internal/server"
	"github.com/iudanet/facialanalyzer/internal/server/metrics"
	"github.com/iudanet/facialanalyzer/internal/server/notify"
	"github.com/iudanet/facialanalyzer/internal/server/session"
	"github.com/iudanet/facialanalyzer/internal/server/storage/sqlite"
	"github.com/iudanet/facialanalyzer/internal/server/token"
)

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Load(cmd.Flags()); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup("facialanalyzer-server", Version, cfg.LogFormat, cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "Starting server",
		slog.String("env", cfg.AppEnv),
		slog.String("database", cfg.DatabasePath),
		slog.String("mail_transport", cfg.MailTransport),
	)

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("path", cfg.DatabasePath).Wrap(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	tokens, err := token.NewService(token.Config{
		AccessSecret:  []byte(cfg.JWTSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.JWTExpiresIn,
		RefreshTTL:    cfg.JWTRefreshExpiresIn,
	})
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	m := metrics.New()

	notifier, closeNotifier, err := newNotifier(cfg, logger)
	if err != nil {
		return oops.Code("NOTIFIER_INIT_FAILED").With("transport", cfg.MailTransport).Wrap(err)
	}
	defer func() {
		if err := closeNotifier.Close(); err != nil {
			logger.Error("failed to close notifier", slog.Any("error", err))
		}
	}()

	accounts := session.NewService(store, tokens, notify.WithMetrics(notifier, m), logger,
		session.WithMetrics(m),
		session.WithNotifyTimeout(cfg.NotifyTimeout),
		session.WithVerificationTTL(cfg.VerificationTokenTTL),
		session.WithResetTTL(cfg.ResetTokenTTL),
		session.WithSessionRevocationOnPasswordChange(cfg.RevokeSessionsOnPasswordChange),
	)

	srv := server.New(server.Config{
		Addr:            cfg.Addr(),
		ClientURL:       cfg.ClientURL,
		Version:         Version,
		AuthRateLimit:   cfg.AuthRateLimit,
		GlobalRateLimit: cfg.GlobalRateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		ShutdownTimeout: cfg.ShutdownTimeout,
		TrustedProxies:  cfg.TrustProxy,
		Production:      cfg.IsProduction(),
	}, server.Deps{
		Accounts: accounts,
		Tokens:   tokens,
		DB:       store,
		Metrics:  m,
		Logger:   logger,
	})

	return srv.Run(ctx)
}

// newNotifier выбирает транспорт писем по MAIL_TRANSPORT
func newNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, io.Closer, error) {
	// срок в письме и в событии совпадает со сроком, который сохраняет session
	verifyTTL, resetTTL := cfg.VerificationTokenTTL, cfg.ResetTokenTTL

	switch cfg.MailTransport {
	case config.MailTransportSMTP:
		mailer, err := notify.NewSMTPMailer(cfg.SMTPSettings(), cfg.Links(), verifyTTL, resetTTL, logger)
		if err != nil {
			return nil, nil, err
		}
		return mailer, nopCloser{}, nil
	case config.MailTransportKafka:
		publisher, err := notify.NewKafkaPublisher(cfg.KafkaSettings(), verifyTTL, resetTTL)
		if err != nil {
			return nil, nil, err
		}
		return publisher, publisher, nil
	default:
		return notify.NewLogNotifier(logger, cfg.Links()), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
