package authcore

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/store"
	"github.com/google/uuid"
)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*PublicAccount, error) {
	if e == nil || e.accounts == nil || e.hasher == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	// The stored document carries the canonical forms; lookups are already
	// case-insensitive through the index keys.
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" || input.Email == "" || input.Password == "" {
		e.emitAudit(ctx, audit.TypeRegisterFailure, false, "", "", ErrValidation, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return nil, ErrValidation
	}

	passwordHash, err := e.hasher.Hash(input.Password)
	if err != nil {
		e.emitAudit(ctx, audit.TypeRegisterFailure, false, "", "", ErrValidation, func() map[string]string {
			return map[string]string{
				"username": input.Username,
				"reason":   "password_policy",
			}
		})
		return nil, ErrValidation
	}

	now := time.Now().UTC()
	account := &Account{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		TokenVersion: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.accounts.Create(ctx, account); err != nil {
		var dup *store.DuplicateFieldError
		if errors.As(err, &dup) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, audit.TypeRegisterDuplicate, false, "", "", err, func() map[string]string {
				return map[string]string{
					"field": dup.Field,
				}
			})
			return nil, err
		}
		e.emitAudit(ctx, audit.TypeRegisterFailure, false, "", "", err, nil)
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.metricInc(MetricEmailVerificationRequest)
	e.emitAudit(ctx, audit.TypeRegisterSuccess, true, account.ID, "", nil, func() map[string]string {
		return map[string]string{
			"username": account.Username,
		}
	})

	e.sendVerificationEmail(ctx, account)

	public := publicAccount(account)
	return &public, nil
}

// ResendVerification issues a fresh verification email. The outcome is
// deliberately indistinguishable to the caller whether the address exists,
// is already verified, or receives mail.
//
// ResendVerification may return an error when input validation, dependency calls, or security checks fail.
// ResendVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResendVerification(ctx context.Context, email string) error {
	if e == nil || e.accounts == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	if email == "" {
		return ErrValidation
	}

	account, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.emitAudit(ctx, audit.TypeEmailVerifyRequest, false, "", "", ErrNotFound, nil)
			return nil
		}
		return err
	}

	e.metricInc(MetricEmailVerificationRequest)
	e.emitAudit(ctx, audit.TypeEmailVerifyRequest, true, account.ID, "", nil, nil)

	if account.EmailVerified {
		return nil
	}

	e.sendVerificationEmail(ctx, account)
	return nil
}

func (e *Engine) sendVerificationEmail(ctx context.Context, account *Account) {
	emailToken, err := e.tokens.IssueEmailAction(account.ID)
	if err != nil {
		log.Printf("authcore: verification token issue failed: %v", err)
		return
	}

	link := e.config.App.BaseURL + "/verify-email?token=" + emailToken
	body := "<p>Welcome to " + e.config.App.Name + "!</p>" +
		"<p>Please verify your email address by clicking the link below:</p>" +
		"<p><a href=\"" + link + "\">Verify Email</a></p>" +
		"<p>This link expires in " + e.config.Token.EmailTTL.String() + ".</p>"

	if err := e.notifier.Send(ctx, account.Email, "Verify your email", body); err != nil {
		log.Printf("authcore: verification email send failed: %v", err)
	}
}
