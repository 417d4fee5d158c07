package email

import (
	"context"
	"strings"
	"testing"
)

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender("", 0, "", "", "from@example.com", "", false); err == nil {
		t.Fatalf("expected error for missing host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 0, "", "", "", "", false); err == nil {
		t.Fatalf("expected error for missing from")
	}
	s, err := NewSMTPSender("smtp.example.com", 0, "", "", "from@example.com", "", false)
	if err != nil {
		t.Fatalf("expected sender, got %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("guru@example.com", "Gita Guru", "jane@example.com", "Welcome to Gita Guru", "hello")
	if !strings.Contains(msg, "From: Gita Guru <guru@example.com>\r\n") {
		t.Fatalf("unexpected from header: %q", msg)
	}
	if !strings.Contains(msg, "To: jane@example.com\r\n") {
		t.Fatalf("unexpected to header: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nhello") {
		t.Fatalf("expected body after blank line: %q", msg)
	}
}

func TestSendWelcome_RequiresRecipient(t *testing.T) {
	s, _ := NewSMTPSender("smtp.example.com", 25, "", "", "from@example.com", "", false)
	if err := s.SendWelcome(context.Background(), " ", "Jane"); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

func TestDisabledSender(t *testing.T) {
	err := NewDisabledSender("smtp not configured").SendWelcome(context.Background(), "a@b.c", "A")
	if err == nil || err.Error() != "smtp not configured" {
		t.Fatalf("expected disabled reason, got %v", err)
	}
}
