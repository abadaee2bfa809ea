package authcore

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/MrEthical07/authcore/internal"
	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store"
)

// ForgotPassword installs a time-boxed single-use reset challenge and mails
// its secret. The caller picks the delivery method per request, either
// ResetMethodToken for a reset link or ResetMethodOTP for a numeric code; an
// empty method falls back to the configured default strategy. The outcome is
// deliberately indistinguishable to the caller whether the address exists.
// Issuing a new challenge replaces any pending one, so at most one secret is
// live per account.
//
// ForgotPassword may return an error when input validation, dependency calls, or security checks fail.
// ForgotPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ForgotPassword(ctx context.Context, email, method string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}
	if email == "" {
		return ErrValidation
	}

	kind, err := e.resetKind(method)
	if err != nil {
		return err
	}

	account, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.emitAudit(ctx, audit.TypePasswordResetRequest, false, "", "", ErrNotFound, nil)
			return nil
		}
		return err
	}

	var secret string
	if kind == store.ResetKindOTP {
		digits := e.config.Reset.OTPDigits
		if digits <= 0 {
			digits = DefaultOTPDigits
		}
		secret, err = internal.NewOTP(digits)
	} else {
		secret, err = internal.NewResetToken()
	}
	if err != nil {
		return err
	}

	challenge := store.ResetSecret{
		Digest:    password.FastDigest(secret),
		Kind:      kind,
		ExpiresAt: time.Now().UTC().Add(e.config.Reset.TTL),
	}
	if err := e.accounts.SetResetSecret(ctx, account.ID, challenge); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, audit.TypePasswordResetRequest, true, account.ID, "", nil, func() map[string]string {
		return map[string]string{
			"kind": kind,
		}
	})

	e.sendResetEmail(ctx, account, secret, kind)
	return nil
}

// ResetPassword consumes a reset secret and installs a new password. On
// success the token version advances and every session slot is cleared, so
// all outstanding access and refresh tokens for the account die together.
//
// ResetPassword may return an error when input validation, dependency calls, or security checks fail.
// ResetPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResetPassword(ctx context.Context, secret, newPassword string) error {
	if e == nil || e.accounts == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	// Pasted OTPs carry stray whitespace, sometimes mid-code ("123 456").
	secret = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, secret)
	if secret == "" || newPassword == "" {
		return ErrValidation
	}

	digest := password.FastDigest(secret)
	account, err := e.accounts.FindByResetDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.metricInc(MetricPasswordResetConfirmFailure)
			e.emitAudit(ctx, audit.TypePasswordResetInvalid, false, "", "", ErrResetInvalid, nil)
			return ErrResetInvalid
		}
		return err
	}

	if account.ResetSecret == nil || time.Now().After(account.ResetSecret.ExpiresAt) {
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, audit.TypePasswordResetInvalid, false, account.ID, "", ErrResetInvalid, func() map[string]string {
			return map[string]string{
				"reason": "expired",
			}
		})
		return ErrResetInvalid
	}

	passwordHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return ErrValidation
	}

	if _, err := e.accounts.ResetCredentials(ctx, account.ID, passwordHash); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetConfirmSuccess)
	e.emitAudit(ctx, audit.TypePasswordResetConfirm, true, account.ID, "", nil, nil)
	return nil
}

// resetKind resolves a caller-supplied method name to a stored secret kind.
func (e *Engine) resetKind(method string) (string, error) {
	switch method {
	case ResetMethodToken:
		return store.ResetKindToken, nil
	case ResetMethodOTP:
		return store.ResetKindOTP, nil
	case "":
		if e.config.Reset.Strategy == ResetOTP {
			return store.ResetKindOTP, nil
		}
		return store.ResetKindToken, nil
	default:
		return "", ErrValidation
	}
}

func (e *Engine) sendResetEmail(ctx context.Context, account *Account, secret, kind string) {
	var subject, body string
	ttl := e.config.Reset.TTL.String()

	if kind == store.ResetKindOTP {
		subject = "Your password reset code"
		body = "<p>Your password reset code is:</p>" +
			"<p><strong>" + secret + "</strong></p>" +
			"<p>The code expires in " + ttl + ". If you did not request a reset, ignore this email.</p>"
	} else {
		link := e.config.App.BaseURL + "/reset-password?token=" + secret
		subject = "Reset your password"
		body = "<p>We received a request to reset your password.</p>" +
			"<p><a href=\"" + link + "\">Reset Password</a></p>" +
			"<p>The link expires in " + ttl + ". If you did not request a reset, ignore this email.</p>"
	}

	if err := e.notifier.Send(ctx, account.Email, subject, body); err != nil {
		log.Printf("authcore: reset email send failed: %v", err)
	}
}
