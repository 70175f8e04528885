// Package notify sends reminder emails.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SMTPConfig holds outbound mail settings. Username and Password are optional;
// when both are empty no AUTH is attempted.
type SMTPConfig struct {
	Addr     string
	From     string
	Username string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer implements ports.Mailer over a plain SMTP relay.
type SMTPMailer struct {
	cfg  SMTPConfig
	auth smtp.Auth
	send sendFunc
	now  func() time.Time
}

// NewSMTPMailer validates cfg and returns a mailer for it.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Addr == "" {
		return nil, errors.New("notify: smtp address is required")
	}
	if cfg.From == "" {
		return nil, errors.New("notify: sender address is required")
	}

	m := &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
	if cfg.Username != "" || cfg.Password != "" {
		host, _, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("notify: invalid smtp address %q: %w", cfg.Addr, err)
		}
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	return m, nil
}

// Send implements ports.Mailer. smtp.SendMail takes no context, so a
// cancelled ctx is only honoured before the dial.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" || strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("notify: invalid recipient %q", to)
	}

	msg := buildMessage(m.cfg.From, to, subject, body, m.now())
	if err := m.send(m.cfg.Addr, m.auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("notify: send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string, at time.Time) []byte {
	subject = strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + at.UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer writes reminders to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email (not sent, smtp disabled)")
	return nil
}
