package notify

import (
	"context"
	"testing"
)

func TestSMTPConfigConfigured(t *testing.T) {
	if (SMTPConfig{}).Configured() {
		t.Fatal("empty config must not report configured")
	}
	if (SMTPConfig{Host: "smtp.example.com"}).Configured() {
		t.Fatal("host alone must not report configured")
	}

	cfg := SMTPConfig{Host: "smtp.example.com", Username: "mailer", Password: "secret"}
	if !cfg.Configured() {
		t.Fatal("expected configured")
	}
}

func TestUnconfiguredMailerIsSilentNoOp(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{})

	if err := mailer.Send(context.Background(), "alice@example.com", "Hi", "<p>Hi</p>"); err != nil {
		t.Fatalf("unconfigured mailer must accept messages, got %v", err)
	}
}

func TestMailerDefaults(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Username: "mailer", Password: "secret"})

	if mailer.cfg.Port != 587 {
		t.Fatalf("expected default port 587, got %d", mailer.cfg.Port)
	}
	if mailer.cfg.From != "mailer" {
		t.Fatalf("expected From to default to Username, got %q", mailer.cfg.From)
	}
}

func TestConfiguredMailerRejectsEmptyRecipient(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Username: "mailer", Password: "secret"})

	if err := mailer.Send(context.Background(), "", "Hi", "<p>Hi</p>"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}

func TestConfiguredMailerHonorsCancelledContext(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Username: "mailer", Password: "secret"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := mailer.Send(ctx, "alice@example.com", "Hi", "<p>Hi</p>"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestCaptureNotifierRecords(t *testing.T) {
	mailbox := NewCaptureNotifier()

	if err := mailbox.Send(context.Background(), "alice@example.com", "Verify", "<p>link</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	messages := mailbox.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].To != "alice@example.com" || messages[0].Subject != "Verify" {
		t.Fatalf("unexpected message: %+v", messages[0])
	}

	// The returned slice is a copy.
	messages[0].To = "mallory@example.com"
	if mailbox.Messages()[0].To != "alice@example.com" {
		t.Fatal("Messages must return a copy")
	}
}
