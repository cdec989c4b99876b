package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes email links to the log instead of sending them.
// Only for local development: the log then contains live tokens.
type LogNotifier struct {
	logger *slog.Logger
	links  Links
}

// NewLogNotifier creates a development notifier.
func NewLogNotifier(logger *slog.Logger, links Links) *LogNotifier {
	return &LogNotifier{logger: logger, links: links}
}

// SendVerificationEmail logs the verification link.
func (n *LogNotifier) SendVerificationEmail(ctx context.Context, email, token, name string) error {
	n.logger.InfoContext(ctx, "Verification email (log transport)",
		slog.String("to", email),
		slog.String("name", name),
		slog.String("link", n.links.VerifyEmail(token)),
	)
	return nil
}

// SendPasswordResetEmail logs the password reset link.
func (n *LogNotifier) SendPasswordResetEmail(ctx context.Context, email, token, name string) error {
	n.logger.InfoContext(ctx, "Password reset email (log transport)",
		slog.String("to", email),
		slog.String("name", name),
		slog.String("link", n.links.ResetPassword(token)),
	)
	return nil
}
