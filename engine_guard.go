package authcore

import (
	"context"
	"errors"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/store"
)

// Authenticate verifies an access token and returns the caller's identity.
// The token version in the claims must match the account's current version,
// so credentials issued before a password reset are rejected here even though
// their signature and expiry still verify.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	if e == nil || e.accounts == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		mapped := mapTokenError(err)
		e.emitAudit(ctx, audit.TypeAccessDenied, false, "", "", mapped, nil)
		return nil, mapped
	}

	account, err := e.accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.emitAudit(ctx, audit.TypeAccessDenied, false, claims.Subject, "", ErrUnauthorized, nil)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if claims.TokenVersion != account.TokenVersion {
		e.emitAudit(ctx, audit.TypeAccessVersionMismatch, false, account.ID, "", ErrTokenInvalidated, nil)
		return nil, ErrTokenInvalidated
	}

	return &Identity{
		AccountID:     account.ID,
		Username:      account.Username,
		Email:         account.Email,
		Role:          account.Role,
		EmailVerified: account.EmailVerified,
		TokenVersion:  account.TokenVersion,
	}, nil
}
