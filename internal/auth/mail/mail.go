// Package mail delivers one-time codes to administrators. The SMTP sender is
// used in production; the log sender keeps local development self-contained.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/fairworkhq/payday/pkg/slogx"
)

// Mailer sends a one-time code to an administrator's email address.
type Mailer interface {
	SendEnrollCode(ctx context.Context, toEmail, code string, ttl time.Duration) error
	SendLoginCode(ctx context.Context, toEmail, code string, ttl time.Duration) error
}

// SMTPConfig carries the connection and branding settings for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AppName  string
}

// SMTPMailer delivers codes over plain-auth SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendEnrollCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	subject := fmt.Sprintf("%s - Confirm Email Verification Setup", m.cfg.AppName)
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"You asked to protect your %s account with email verification codes. Enter the code below to finish setup:\n\n"+
			"Verification Code: %s\n\n"+
			"This code expires in %d minutes. If you did not request this, you can ignore this email.\n\n"+
			"The %s Team",
		m.cfg.AppName, code, int(ttl.Minutes()), m.cfg.AppName)

	return m.send(toEmail, subject, body)
}

func (m *SMTPMailer) SendLoginCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	subject := fmt.Sprintf("%s - Your Sign-In Code", m.cfg.AppName)
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Use the code below to finish signing in to %s:\n\n"+
			"Sign-In Code: %s\n\n"+
			"This code expires in %d minutes. If you did not try to sign in, change your password now.\n\n"+
			"The %s Team",
		m.cfg.AppName, code, int(ttl.Minutes()), m.cfg.AppName)

	return m.send(toEmail, subject, body)
}

func (m *SMTPMailer) send(toEmail, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	// RFC 822 headers want CRLF line endings and a blank line before the body.
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.cfg.From),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	return smtp.SendMail(addr, auth, m.cfg.From, []string{toEmail}, []byte(msg))
}

// LogMailer writes codes to the service log instead of sending email. Dev
// only; never enable this in production.
type LogMailer struct{}

func (LogMailer) SendEnrollCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	slogx.FromContext(ctx).Warn("mail: enroll code (dev delivery)",
		slog.String("to", toEmail),
		slog.String("code", code),
	)
	return nil
}

func (LogMailer) SendLoginCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	slogx.FromContext(ctx).Warn("mail: login code (dev delivery)",
		slog.String("to", toEmail),
		slog.String("code", code),
	)
	return nil
}
