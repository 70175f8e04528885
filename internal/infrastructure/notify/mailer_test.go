package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewSMTPMailer_Validation(t *testing.T) {
	if _, err := NewSMTPMailer(SMTPConfig{From: "a@b.c"}); err == nil {
		t.Fatalf("expected error for missing addr")
	}
	if _, err := NewSMTPMailer(SMTPConfig{Addr: "smtp:25"}); err == nil {
		t.Fatalf("expected error for missing from")
	}
	if _, err := NewSMTPMailer(SMTPConfig{Addr: "no-port", From: "a@b.c", Username: "u"}); err == nil {
		t.Fatalf("expected error for addr without port when auth is set")
	}

	m, err := NewSMTPMailer(SMTPConfig{Addr: "smtp:25", From: "a@b.c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.auth != nil {
		t.Fatalf("expected no auth without credentials")
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Addr: "smtp.local:587", From: "noreply@tasks.local", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.now = func() time.Time { return time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC) }

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		if a == nil {
			t.Fatalf("expected auth to be passed")
		}
		return nil
	}

	if err := m.Send(context.Background(), "alice@example.com", "Daily Task Reminder", "Hi alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "smtp.local:587" || len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("unexpected envelope: %s %v", gotAddr, gotTo)
	}
	msg := string(gotMsg)
	for _, want := range []string{"Subject: Daily Task Reminder\r\n", "To: alice@example.com\r\n", "\r\n\r\nHi alice\r\n"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTPMailer_SendErrors(t *testing.T) {
	m, _ := NewSMTPMailer(SMTPConfig{Addr: "smtp:25", From: "a@b.c"})
	boom := errors.New("relay refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	if err := m.Send(context.Background(), "x@y.z", "s", "b"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped relay error, got %v", err)
	}
	if err := m.Send(context.Background(), "x@y.z\r\nBcc: evil@z", "s", "b"); err == nil {
		t.Fatalf("expected header injection to be rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, "x@y.z", "s", "b"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	if err := m.Send(context.Background(), "alice@example.com", "Daily Task Reminder", "Hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "alice@example.com") {
		t.Fatalf("expected recipient in log output, got %s", buf.String())
	}
}
