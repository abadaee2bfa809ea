package authcore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrEthical07/authcore/store"
)

func TestRegisterSendsVerificationEmail(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	account, err := engine.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3r$ecret",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.ID == "" || account.Username != "alice" || account.Role != RoleUser {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.EmailVerified {
		t.Fatal("new accounts must start unverified")
	}

	messages := mailbox.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 email, got %d", len(messages))
	}
	if messages[0].To != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", messages[0].To)
	}
	if !strings.Contains(messages[0].Body, "http://app.test/verify-email?token=") {
		t.Fatalf("expected verification link in body: %s", messages[0].Body)
	}
}

func TestRegisterCanonicalizesInput(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	account, err := engine.Register(ctx, RegisterInput{
		Username: "  alice  ",
		Email:    "Alice@Example.COM",
		Password: "Sup3r$ecret",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", account.Username)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", account.Email)
	}

	// The submitted casing still resolves through the index.
	if err := engine.ResendVerification(ctx, "Alice@Example.COM"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
}

func TestRegisterDuplicateReportsField(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	input := RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Sup3r$ecret"}
	if _, err := engine.Register(ctx, input); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var dup *store.DuplicateFieldError

	_, err := engine.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "Sup3r$ecret"})
	if !errors.As(err, &dup) || dup.Field != "username" {
		t.Fatalf("expected username conflict, got %v", err)
	}

	_, err = engine.Register(ctx, RegisterInput{Username: "bob", Email: "alice@example.com", Password: "Sup3r$ecret"})
	if !errors.As(err, &dup) || dup.Field != "email" {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.c"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing password, got %v", err)
	}
	if _, err := engine.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.c", Password: "short"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
}

func TestResendVerificationUnknownEmailSucceeds(t *testing.T) {
	engine, mailbox := newTestEngine(t)

	if err := engine.ResendVerification(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected generic success for unknown email, got %v", err)
	}
	if len(mailbox.Messages()) != 0 {
		t.Fatal("no email should be sent for unknown address")
	}
}

func TestResendVerificationSendsFreshToken(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3r$ecret",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := engine.ResendVerification(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}

	messages := mailbox.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(messages))
	}

	// The re-sent token must verify.
	emailToken := tokenFromEmail(t, messages[1].Body)
	if _, err := engine.VerifyEmail(ctx, emailToken); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
}

func TestResendVerificationAlreadyVerifiedSendsNothing(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")
	before := len(mailbox.Messages())

	if err := engine.ResendVerification(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if len(mailbox.Messages()) != before {
		t.Fatal("verified accounts should not receive another verification email")
	}
}
