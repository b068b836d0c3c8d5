package service

import (
	"context"
	"log/slog"
)

// Mailer delivers account mail. The server runs without an SMTP setup by
// default, so the standard implementation just logs.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes mail to the log instead of sending it.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that logs instead of sending.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendPasswordReset logs the reset token for operator delivery.
func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.logger.Info("password reset token issued", "email", email, "token", token)
	return nil
}
