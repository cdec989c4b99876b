package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/iudanet/facialanalyzer/internal/config"
	"github.com/iudanet/facialanalyzer/internal/logging"
	"github.com/iudanet/facialanalyzer/internal/server/notify"
	"github.com/iudanet/facialanalyzer/internal/server/session"
)

// NewRootCmd создает команду почтового воркера.
func NewRootCmd() *cobra.Command {
	cfg := config.Defaults()

	cmd := &cobra.Command{
		Use:   "mailer",
		Short: "Deliver account emails published to Kafka",
		Long: `Reads verification and password reset events from the notifications topic
and sends them over SMTP. Without SMTP_HOST the emails are only logged.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &cfg)
		},
	}

	cfg.BindFlags(cmd.Flags())

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Load(cmd.Flags()); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	// воркер всегда читает Kafka, MAIL_TRANSPORT относится к API-серверу
	cfg.MailTransport = config.MailTransportKafka
	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup("facialanalyzer-mailer", Version, cfg.LogFormat, cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	delivery, err := newDelivery(cfg, logger)
	if err != nil {
		return oops.Code("NOTIFIER_INIT_FAILED").Wrap(err)
	}

	consumer, err := notify.NewConsumer(cfg.KafkaSettings(), delivery, logger)
	if err != nil {
		return oops.Code("KAFKA_INIT_FAILED").With("brokers", cfg.Kafka.Brokers).Wrap(err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close consumer", slog.Any("error", err))
		}
	}()

	logger.InfoContext(ctx, "Starting mailer",
		slog.Any("brokers", cfg.Kafka.Brokers),
		slog.String("topic", cfg.Kafka.Topic),
		slog.String("group", cfg.Kafka.GroupID),
	)

	return consumer.Run(ctx)
}

func newDelivery(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST is not set, emails will only be logged")
		return notify.NewLogNotifier(logger, cfg.Links()), nil
	}
	return notify.NewSMTPMailer(
		cfg.SMTPSettings(), cfg.Links(),
		session.DefaultVerificationTTL, session.DefaultResetTTL,
		logger,
	)
}
