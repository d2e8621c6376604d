package services

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers account emails
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// LogMailer writes outgoing mail to the log instead of sending it
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.Named("mailer")}
}

func (m *LogMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	m.log.Info("verification code issued", zap.String("to", to), zap.String("code", code))
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.log.Info("password reset link issued", zap.String("to", to), zap.String("link", link))
	return nil
}
