package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/iudanet/facialanalyzer/pkg/api"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// messageReader is the part of *kafka.Reader the consumer uses
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads notification events and delivers them through a Notifier.
//
// Offsets are committed after the event was handled: delivered, retried out
// or skipped as malformed/expired. A crash between send and commit may cause
// a duplicate email, never a lost one.
type Consumer struct {
	reader      messageReader
	notifier    Notifier
	logger      *slog.Logger
	now         func() time.Time
	maxAttempts int
	retryDelay  time.Duration
}

// NewConsumer creates a consumer-group reader for cfg.Topic.
func NewConsumer(cfg KafkaConfig, notifier Notifier, logger *slog.Logger) (*Consumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka group id is required")
	}

	dialer := &kafka.Dialer{
		Timeout:   cfg.timeout(),
		DualStack: true,
		TLS:       cfg.tlsConfig(),
	}
	if cfg.Username != "" {
		dialer.SASLMechanism = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	return newConsumer(reader, notifier, logger), nil
}

func newConsumer(r messageReader, notifier Notifier, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:      r,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
}

// Run consumes until ctx is cancelled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Notification consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.InfoContext(ctx, "Notification consumer stopped")
				return nil
			}
			c.logger.ErrorContext(ctx, "Failed to fetch message", slog.Any("error", err))
			if !sleep(ctx, c.retryDelay) {
				return nil
			}
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, "Failed to commit message",
				slog.Int64("offset", msg.Offset),
				slog.Any("error", err),
			)
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var event api.NotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.WarnContext(ctx, "Skipping malformed notification event",
			slog.Int64("offset", msg.Offset),
			slog.Any("error", err),
		)
		return
	}

	logger := c.logger.With(slog.String("type", event.Type), slog.String("to", event.Email))

	if !event.ExpiresAt.IsZero() && !event.ExpiresAt.After(c.now()) {
		logger.InfoContext(ctx, "Skipping expired notification event")
		return
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.dispatch(ctx, event)
		if err == nil {
			logger.InfoContext(ctx, "Notification delivered", slog.Int("attempt", attempt))
			return
		}
		if errors.Is(err, errUnknownEvent) {
			logger.WarnContext(ctx, "Skipping unknown notification event")
			return
		}

		logger.WarnContext(ctx, "Notification delivery failed",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		if attempt < c.maxAttempts && !sleep(ctx, c.retryDelay*time.Duration(attempt)) {
			return
		}
	}

	logger.ErrorContext(ctx, "Giving up on notification event", slog.Int("attempts", c.maxAttempts))
}

var errUnknownEvent = errors.New("unknown notification event")

func (c *Consumer) dispatch(ctx context.Context, event api.NotificationEvent) error {
	switch event.Type {
	case api.EventVerifyEmail:
		return c.notifier.SendVerificationEmail(ctx, event.Email, event.Token, event.Name)
	case api.EventPasswordReset:
		return c.notifier.SendPasswordResetEmail(ctx, event.Email, event.Token, event.Name)
	default:
		return errUnknownEvent
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
