package authcore

import (
	"context"
	"log"

	"github.com/MrEthical07/authcore/internal/audit"
)

// Logout removes the session slot named by the refresh token. The operation
// is best effort: an invalid, expired, or already-revoked token still results
// in a successful logout, since the caller's goal state is reached either way.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.accounts == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.emitAudit(ctx, audit.TypeLogoutSession, true, "", "", nil, func() map[string]string {
			return map[string]string{
				"reason": "unparsable_token",
			}
		})
		return nil
	}

	if err := e.accounts.RemoveSession(ctx, claims.Subject, claims.ID); err != nil {
		log.Printf("authcore: logout session removal failed: %v", err)
		return nil
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, audit.TypeLogoutSession, true, claims.Subject, claims.ID, nil, nil)
	return nil
}
