package authcore

import (
	"context"
	"errors"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/store"
)

// VerifyEmail marks the account named by an email-action token as verified.
// Verifying twice succeeds; the second call changes nothing.
//
// VerifyEmail may return an error when input validation, dependency calls, or security checks fail.
// VerifyEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyEmail(ctx context.Context, emailToken string) (*PublicAccount, error) {
	if e == nil || e.accounts == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if emailToken == "" {
		return nil, ErrTokenInvalid
	}

	claims, err := e.tokens.ParseEmailAction(emailToken)
	if err != nil {
		mapped := mapTokenError(err)
		e.emitAudit(ctx, audit.TypeEmailVerifyConfirm, false, "", "", mapped, nil)
		return nil, mapped
	}

	account, err := e.accounts.SetEmailVerified(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.emitAudit(ctx, audit.TypeEmailVerifyConfirm, false, claims.Subject, "", ErrNotFound, nil)
			return nil, ErrNotFound
		}
		return nil, err
	}

	e.metricInc(MetricEmailVerificationConfirm)
	e.emitAudit(ctx, audit.TypeEmailVerifyConfirm, true, account.ID, "", nil, nil)

	public := publicAccount(account)
	return &public, nil
}
