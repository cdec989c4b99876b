// Package notify delivers account emails (verification and password reset).
//
// The session service talks to a Notifier; the concrete transport is chosen
// by configuration: LogNotifier for development, SMTPMailer for direct delivery
// and KafkaPublisher to hand events over to the mailer worker.
package notify

import (
	"context"
	"net/url"
	"strings"

	"github.com/iudanet/facialanalyzer/internal/server/metrics"
	"github.com/iudanet/facialanalyzer/pkg/api"
)

// Notifier sends account emails. Implementations must be safe for concurrent use.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, token, name string) error
	SendPasswordResetEmail(ctx context.Context, email, token, name string) error
}

// Links builds the client URLs embedded in emails.
type Links struct {
	ClientURL string
}

// VerifyEmail returns {ClientURL}/verify-email?token=...
func (l Links) VerifyEmail(token string) string {
	return l.build("/verify-email", token)
}

// ResetPassword returns {ClientURL}/reset-password?token=...
func (l Links) ResetPassword(token string) string {
	return l.build("/reset-password", token)
}

func (l Links) build(path, token string) string {
	return strings.TrimRight(l.ClientURL, "/") + path + "?token=" + url.QueryEscape(token)
}

// instrumented counts deliveries per kind and result.
type instrumented struct {
	next    Notifier
	metrics *metrics.Metrics
}

// WithMetrics wraps n so that every delivery is counted in facial_notifications_total.
func WithMetrics(n Notifier, m *metrics.Metrics) Notifier {
	if m == nil {
		return n
	}
	return &instrumented{next: n, metrics: m}
}

func (i *instrumented) SendVerificationEmail(ctx context.Context, email, token, name string) error {
	err := i.next.SendVerificationEmail(ctx, email, token, name)
	i.metrics.RecordNotification(api.EventVerifyEmail, result(err))
	return err
}

func (i *instrumented) SendPasswordResetEmail(ctx context.Context, email, token, name string) error {
	err := i.next.SendPasswordResetEmail(ctx, email, token, name)
	i.metrics.RecordNotification(api.EventPasswordReset, result(err))
	return err
}

func result(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
