package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/store"
	"github.com/google/uuid"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, plaintextPassword string) (*LoginResult, error) {
	if e == nil || e.accounts == nil || e.hasher == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if email == "" || plaintextPassword == "" {
		return nil, ErrValidation
	}

	account, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Unknown address and wrong password are indistinguishable to the caller.
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, audit.TypeLoginFailure, false, "", "", ErrInvalidCredentials, func() map[string]string {
				return map[string]string{
					"reason": "unknown_email",
				}
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := e.hasher.Verify(plaintextPassword, account.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, audit.TypeLoginFailure, false, account.ID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}

	if !account.EmailVerified {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, audit.TypeLoginFailure, false, account.ID, "", ErrEmailUnverified, nil)
		return nil, ErrEmailUnverified
	}

	session := RefreshSession{
		ID:         uuid.NewString(),
		ClientHint: clientHintFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}

	updated, evicted, err := e.accounts.AppendSession(ctx, account.ID, session, e.config.Session.MaxPerAccount)
	if err != nil {
		return nil, err
	}

	accessToken, err := e.tokens.IssueAccess(updated.ID, updated.Role, updated.TokenVersion)
	if err != nil {
		return nil, err
	}
	refreshToken, err := e.tokens.IssueRefresh(updated.ID, updated.TokenVersion, session.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, audit.TypeLoginSuccess, true, updated.ID, session.ID, nil, nil)
	if evicted {
		e.metricInc(MetricSessionEvicted)
		e.emitAudit(ctx, audit.TypeSessionEvicted, true, updated.ID, session.ID, nil, func() map[string]string {
			return map[string]string{
				"reason": "session_cap",
			}
		})
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		Evicted:      evicted,
		Account:      publicAccount(updated),
	}, nil
}
