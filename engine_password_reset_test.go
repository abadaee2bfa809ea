package authcore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestForgotPasswordUnknownEmailSucceeds(t *testing.T) {
	engine, mailbox := newTestEngine(t)

	if err := engine.ForgotPassword(context.Background(), "ghost@example.com", ""); err != nil {
		t.Fatalf("expected generic success for unknown email, got %v", err)
	}
	if len(mailbox.Messages()) != 0 {
		t.Fatal("no email should be sent for unknown address")
	}
}

func TestResetPasswordTokenFlow(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")

	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	messages := mailbox.Messages()
	body := messages[len(messages)-1].Body
	if !strings.Contains(body, "http://app.test/reset-password?token=") {
		t.Fatalf("expected reset link in body: %s", body)
	}
	secret := tokenFromEmail(t, body)

	if err := engine.ResetPassword(ctx, secret, "N3w$ecret1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	// Old password dead, new password live.
	if _, err := engine.Login(ctx, "alice@example.com", "Sup3r$ecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "N3w$ecret1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestResetSecretIsSingleUse(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")
	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	messages := mailbox.Messages()
	secret := tokenFromEmail(t, messages[len(messages)-1].Body)

	if err := engine.ResetPassword(ctx, secret, "N3w$ecret1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := engine.ResetPassword(ctx, secret, "An0ther$ecret"); !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid on replay, got %v", err)
	}
}

func TestResetSecretExpires(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Reset.TTL = time.Millisecond
	engine, mailbox := newTestEngineWithConfig(t, cfg)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")
	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	messages := mailbox.Messages()
	secret := tokenFromEmail(t, messages[len(messages)-1].Body)

	time.Sleep(10 * time.Millisecond)

	if err := engine.ResetPassword(ctx, secret, "N3w$ecret1"); !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid for expired secret, got %v", err)
	}
}

func TestNewChallengeInvalidatesPreviousSecret(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")

	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("first ForgotPassword: %v", err)
	}
	first := tokenFromEmail(t, mailbox.Messages()[len(mailbox.Messages())-1].Body)

	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("second ForgotPassword: %v", err)
	}
	second := tokenFromEmail(t, mailbox.Messages()[len(mailbox.Messages())-1].Body)

	if err := engine.ResetPassword(ctx, first, "N3w$ecret1"); !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected superseded secret rejected, got %v", err)
	}
	if err := engine.ResetPassword(ctx, second, "N3w$ecret1"); err != nil {
		t.Fatalf("current secret should work: %v", err)
	}
}

func TestResetPasswordOTPFlow(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")

	// The caller picks the OTP method per request, independent of the
	// configured default strategy.
	if err := engine.ForgotPassword(ctx, "alice@example.com", ResetMethodOTP); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	messages := mailbox.Messages()
	code := otpFromEmail(t, messages[len(messages)-1].Body)
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code %q", code)
		}
	}

	// Pasted codes keep stray whitespace, including inside the code.
	padded := "  " + code[:3] + " " + code[3:] + "\n"
	if err := engine.ResetPassword(ctx, padded, "N3w$ecret1"); err != nil {
		t.Fatalf("ResetPassword with OTP: %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "N3w$ecret1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestForgotPasswordMethodSelection(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")

	if err := engine.ForgotPassword(ctx, "alice@example.com", "sms"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown method, got %v", err)
	}

	if err := engine.ForgotPassword(ctx, "alice@example.com", ResetMethodToken); err != nil {
		t.Fatalf("ForgotPassword token method: %v", err)
	}
	messages := mailbox.Messages()
	if body := messages[len(messages)-1].Body; !strings.Contains(body, "reset-password?token=") {
		t.Fatalf("expected reset link for token method, got %s", body)
	}

	if err := engine.ForgotPassword(ctx, "alice@example.com", ResetMethodOTP); err != nil {
		t.Fatalf("ForgotPassword otp method: %v", err)
	}
	messages = mailbox.Messages()
	last := messages[len(messages)-1]
	if last.Subject != "Your password reset code" {
		t.Fatalf("expected OTP email, got subject %q", last.Subject)
	}
	if strings.Contains(last.Body, "reset-password?token=") {
		t.Fatalf("OTP email must not carry a reset link: %s", last.Body)
	}
}

func TestForgotPasswordDefaultStrategyOTP(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Reset.Strategy = ResetOTP
	engine, mailbox := newTestEngineWithConfig(t, cfg)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")
	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	messages := mailbox.Messages()
	if subject := messages[len(messages)-1].Subject; subject != "Your password reset code" {
		t.Fatalf("expected OTP email via default strategy, got subject %q", subject)
	}
}

func TestResetPasswordClearsAllSessions(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	account := registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")

	if _, err := engine.Login(ctx, "alice@example.com", "Sup3r$ecret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "Sup3r$ecret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	messages := mailbox.Messages()
	secret := tokenFromEmail(t, messages[len(messages)-1].Body)
	if err := engine.ResetPassword(ctx, secret, "N3w$ecret1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	stats, err := engine.GetAccountStats(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccountStats: %v", err)
	}
	if stats.ActiveSessions != 0 {
		t.Fatalf("expected 0 sessions after reset, got %d", stats.ActiveSessions)
	}
}

func TestResetPasswordValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if err := engine.ResetPassword(ctx, "", "N3w$ecret1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty secret, got %v", err)
	}
	if err := engine.ResetPassword(ctx, "some-secret", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
}

func TestAccessTokenDiesOnPasswordReset(t *testing.T) {
	engine, mailbox := newTestEngine(t)
	ctx := context.Background()

	registerVerified(t, engine, mailbox, "alice", "alice@example.com", "Sup3r$ecret")
	login, err := engine.Login(ctx, "alice@example.com", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := engine.ForgotPassword(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	messages := mailbox.Messages()
	secret := tokenFromEmail(t, messages[len(messages)-1].Body)
	if err := engine.ResetPassword(ctx, secret, "N3w$ecret1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	// Still signature-valid and unexpired, but the version moved on.
	if _, err := engine.Authenticate(ctx, login.AccessToken); !errors.Is(err, ErrTokenInvalidated) {
		t.Fatalf("expected ErrTokenInvalidated, got %v", err)
	}
}
