package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/example/logistics-erp/internal/config"
)

// Mailer delivers password-reset codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, otp string, ttl time.Duration) error
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when SMTP is
// not configured.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if !cfg.Enabled() {
		return &LogMailer{logger: logger}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// SendOTP mails the reset code to the user.
func (m *SMTPMailer) SendOTP(ctx context.Context, to, otp string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(otpMessage(m.from, to, otp, ttl)); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	m.logger.Info("password reset code sent", zap.String("email", to))
	return nil
}

// LogMailer writes reset codes to the log. Used in development.
type LogMailer struct {
	logger *zap.Logger
}

// SendOTP logs the code instead of sending it.
func (m *LogMailer) SendOTP(_ context.Context, to, otp string, ttl time.Duration) error {
	m.logger.Info("smtp not configured, password reset code logged",
		zap.String("email", to),
		zap.String("otp", otp),
		zap.Duration("ttl", ttl),
	)
	return nil
}

func otpMessage(from, to, otp string, ttl time.Duration) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset OTP")
	m.SetBody("text/plain", fmt.Sprintf("Your OTP for password reset is %s. It is valid for %d minutes.", otp, int(ttl.Minutes())))
	return m
}
