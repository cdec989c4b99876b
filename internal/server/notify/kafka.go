package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/iudanet/facialanalyzer/pkg/api"
)

// KafkaConfig описывает подключение к брокеру
type KafkaConfig struct {
	Topic    string
	GroupID  string
	Username string
	Password string
	Brokers  []string
	Timeout  time.Duration
	TLS      bool
}

func (c KafkaConfig) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required")
	}
	if c.Topic == "" {
		return fmt.Errorf("kafka topic is required")
	}
	return nil
}

func (c KafkaConfig) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

func (c KafkaConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements Notifier by publishing api.NotificationEvent messages.
// Delivery itself happens in the mailer worker (see Consumer).
type KafkaPublisher struct {
	writer    messageWriter
	now       func() time.Time
	verifyTTL time.Duration
	resetTTL  time.Duration
}

// NewKafkaPublisher creates a synchronous producer that waits for all in-sync replicas.
func NewKafkaPublisher(cfg KafkaConfig, verifyTTL, resetTTL time.Duration) (*KafkaPublisher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	transport := &kafka.Transport{
		TLS:         cfg.tlsConfig(),
		DialTimeout: cfg.timeout(),
	}
	if cfg.Username != "" {
		transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.timeout(),
		Transport:    transport,
	}

	return newKafkaPublisher(writer, verifyTTL, resetTTL), nil
}

func newKafkaPublisher(w messageWriter, verifyTTL, resetTTL time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now, verifyTTL: verifyTTL, resetTTL: resetTTL}
}

// SendVerificationEmail publishes a verify_email event.
func (p *KafkaPublisher) SendVerificationEmail(ctx context.Context, email, token, name string) error {
	return p.publish(ctx, api.NotificationEvent{
		Type:      api.EventVerifyEmail,
		Email:     email,
		Name:      name,
		Token:     token,
		ExpiresAt: p.now().Add(p.verifyTTL).UTC(),
	})
}

// SendPasswordResetEmail publishes a password_reset event.
func (p *KafkaPublisher) SendPasswordResetEmail(ctx context.Context, email, token, name string) error {
	return p.publish(ctx, api.NotificationEvent{
		Type:      api.EventPasswordReset,
		Email:     email,
		Name:      name,
		Token:     token,
		ExpiresAt: p.now().Add(p.resetTTL).UTC(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, event api.NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	// Ключ = email: события одного пользователя попадают в одну партицию по порядку
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Email),
		Value: value,
		Time:  p.now(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
