package utils

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/sony/gobreaker"
)

func TestSMTPMailerSend(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "noreply@example.com", "pw")
	var gotAddr string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		if from != "noreply@example.com" || len(to) != 1 || to[0] != "ana@example.com" {
			t.Errorf("unexpected envelope from=%s to=%v", from, to)
		}
		return nil
	}

	if err := m.Send(context.Background(), "ana@example.com", "Reminder", "Hello ana,\n\nThe task is due."); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %s", gotAddr)
	}
	if !strings.Contains(string(gotMsg), "Subject: Reminder\r\n") {
		t.Errorf("message missing subject header: %q", gotMsg)
	}
}

func TestSMTPMailerKeepsSubjectOnOneLine(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "noreply@example.com", "pw")
	var gotMsg string
	m.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	subject := "Reminder: task 'Fix bug\r\nBcc: victim@evil.example' is due soon"
	if err := m.Send(context.Background(), "ana@example.com", subject, "body"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	headers, body, ok := strings.Cut(gotMsg, "\r\n\r\n")
	if !ok {
		t.Fatalf("no header/body separator in %q", gotMsg)
	}
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(strings.ToLower(line), "bcc:") {
			t.Fatalf("title started a Bcc header: %q", headers)
		}
	}
	if !strings.Contains(headers, "Subject: Reminder: task 'Fix bug Bcc: victim@evil.example' is due soon\r\n") {
		t.Errorf("subject not folded onto one line: %q", headers)
	}
	if !strings.Contains(headers, "Content-Type: text/plain") {
		t.Errorf("expected a plain text body: %q", headers)
	}
	if body != "body\r\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSMTPMailerNotConfigured(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "", "")
	if err := m.Send(context.Background(), "ana@example.com", "s", "b"); !errors.Is(err, ErrMailerNotConfigured) {
		t.Fatalf("err = %v, want ErrMailerNotConfigured", err)
	}
}

func TestSMTPMailerBreakerOpens(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "noreply@example.com", "pw")
	calls := 0
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("relay down")
	}
	for i := 0; i < 6; i++ {
		_ = m.Send(context.Background(), "ana@example.com", "s", "b")
	}
	if calls != 4 {
		t.Errorf("relay called %d times, want 4 before the breaker opens", calls)
	}
	if err := m.Send(context.Background(), "ana@example.com", "s", "b"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want open breaker", err)
	}
}
