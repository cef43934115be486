package utils

import (
	"fmt"

	"curaconnect/config"

	"gopkg.in/gomail.v2"
)

// Mailer delivers transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendOTP(to, name, otp, purpose string) error
}

// SMTPMailer sends mail through the configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from the process configuration.
func NewSMTPMailer() *SMTPMailer {
	cfg := config.AppConfig
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
	}
}

// SendOTP emails a one-time passcode. purpose reads like "registration" or
// "login" and only affects the subject line.
func (m *SMTPMailer) SendOTP(to, name, otp, purpose string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your OTP for CuraConnect %s", purpose))
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Hello %s,</p><p>Your OTP is: <b>%s</b></p><p>It expires in 10 minutes. If you didn't request this, please ignore this email.</p>",
		name, otp,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send OTP email to %s: %w", to, err)
	}
	return nil
}
