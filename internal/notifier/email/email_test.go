package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/guregu/null/v6"

	"github.com/newthinker/finsight/internal/notifier"
)

func TestEmail_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Email)(nil)
}

func TestEmail_Name(t *testing.T) {
	e := New("smtp.example.com", 587, "", "", "from@example.com", []string{"to@example.com"})
	if e.Name() != "email" {
		t.Errorf("expected 'email', got %s", e.Name())
	}
}

func TestEmail_Init_RequiredFields(t *testing.T) {
	e := &Email{}
	if err := e.Init(notifier.Config{Params: map[string]any{}}); err == nil {
		t.Error("expected error for missing fields")
	}
}

func TestEmail_Init_WithConfig(t *testing.T) {
	e := &Email{}
	err := e.Init(notifier.Config{
		Params: map[string]any{
			"host": "smtp.example.com",
			"port": 465,
			"from": "bot@example.com",
			"to":   []any{"a@example.com", "b@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.port != 465 {
		t.Errorf("expected port 465, got %d", e.port)
	}
	if len(e.to) != 2 {
		t.Errorf("expected 2 recipients, got %v", e.to)
	}
}

func TestEmail_Init_DefaultPort(t *testing.T) {
	e := &Email{}
	e.Init(notifier.Config{Params: map[string]any{
		"host": "smtp.example.com",
		"from": "bot@example.com",
		"to":   "a@example.com",
	}})
	if e.port != 587 {
		t.Errorf("expected default port 587, got %d", e.port)
	}
}

func sampleNotice() notifier.Notice {
	return notifier.Notice{
		ReportID: "r1",
		Window:   "1y",
		Status:   "ok",
		Companies: []notifier.CompanyLine{
			{Ticker: "AAPL", Name: "Apple", Return: null.FloatFrom(0.12)},
			{Ticker: "T", Name: "AT&T", Return: null.FloatFrom(-0.08)},
		},
	}
}

func TestFormatHTML(t *testing.T) {
	body := formatHTML(sampleNotice())

	if !strings.Contains(body, "AAPL") {
		t.Error("body should contain ticker")
	}
	if !strings.Contains(body, "AT&amp;T") {
		t.Error("body should escape names")
	}
	if !strings.Contains(body, "#28a745") || !strings.Contains(body, "#dc3545") {
		t.Error("body should color gains and losses")
	}
}

func TestEmail_Send(t *testing.T) {
	e := New("smtp.example.com", 587, "user", "pass", "bot@example.com", []string{"to@example.com"})

	var gotAddr string
	var gotMsg string
	e.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = string(msg)
		return nil
	}

	if err := e.Send(context.Background(), sampleNotice()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("unexpected addr %s", gotAddr)
	}
	if !strings.Contains(gotMsg, "Subject: FinSight report 1y: AAPL, T (ok)") {
		t.Errorf("unexpected message headers: %s", gotMsg)
	}
}

func TestEmail_Send_Failure(t *testing.T) {
	e := New("smtp.example.com", 587, "", "", "bot@example.com", []string{"to@example.com"})
	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	if err := e.Send(context.Background(), sampleNotice()); err == nil {
		t.Error("expected error")
	}
}

func TestEmail_Send_CancelledContext(t *testing.T) {
	e := New("smtp.example.com", 587, "", "", "bot@example.com", []string{"to@example.com"})
	called := false
	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Send(ctx, sampleNotice()); err == nil {
		t.Error("expected context error")
	}
	if called {
		t.Error("should not send after cancellation")
	}
}
