package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/token"
	"github.com/google/uuid"
)

// Refresh rotates a refresh token: the presented token's session slot is
// atomically replaced by a successor, so each refresh token is usable exactly
// once. A replayed token finds its slot gone and is rejected.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if e == nil || e.accounts == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if refreshToken == "" {
		return nil, ErrRefreshMissing
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, audit.TypeRefreshInvalid, false, "", "", mapTokenError(err), nil)
		return nil, mapTokenError(err)
	}

	account, err := e.accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, audit.TypeRefreshInvalid, false, claims.Subject, claims.ID, ErrUnauthorized, nil)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if claims.TokenVersion != account.TokenVersion {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, audit.TypeRefreshInvalid, false, account.ID, claims.ID, ErrTokenInvalidated, nil)
		return nil, ErrTokenInvalidated
	}

	next := RefreshSession{
		ID:         uuid.NewString(),
		ClientHint: clientHintFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}

	updated, err := e.accounts.RotateSession(ctx, account.ID, claims.ID, next)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, audit.TypeRefreshInvalid, false, account.ID, claims.ID, ErrSessionExpired, func() map[string]string {
				return map[string]string{
					"reason": "slot_missing",
				}
			})
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	accessToken, err := e.tokens.IssueAccess(updated.ID, updated.Role, updated.TokenVersion)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := e.tokens.IssueRefresh(updated.ID, updated.TokenVersion, next.ID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, audit.TypeRefreshSuccess, true, updated.ID, next.ID, nil, nil)

	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		SessionID:    next.ID,
	}, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrInvalid):
		return ErrTokenInvalid
	default:
		return err
	}
}
