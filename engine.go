package authcore

import (
	"context"
	"errors"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/notify"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/token"
)

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	accounts *store.AccountStore
	tokens   *token.Manager
	hasher   *password.Hasher
	notifier notify.Notifier
	audit    *audit.Dispatcher
	metrics  *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Ready describes the ready operation and its observable behavior.
//
// Ready may return an error when input validation, dependency calls, or security checks fail.
// Ready does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Ready(ctx context.Context) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}
	return e.accounts.Ping(ctx)
}

// GetAccount returns the public projection of one account.
//
// GetAccount may return an error when input validation, dependency calls, or security checks fail.
// GetAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GetAccount(ctx context.Context, accountID string) (*PublicAccount, error) {
	account, err := e.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	public := publicAccount(account)
	return &public, nil
}

// GetAccountStats returns the activity summary of one account.
//
// GetAccountStats may return an error when input validation, dependency calls, or security checks fail.
// GetAccountStats does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GetAccountStats(ctx context.Context, accountID string) (*AccountStats, error) {
	account, err := e.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &AccountStats{
		LoginCount:     account.LoginCount,
		ActiveSessions: len(account.Sessions),
		LastLoginAt:    account.LastLoginAt,
		MemberSince:    account.CreatedAt,
	}, nil
}

// ListAccounts returns public projections of up to limit accounts, in
// unspecified order. It backs administrative views only.
//
// ListAccounts may return an error when input validation, dependency calls, or security checks fail.
// ListAccounts does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ListAccounts(ctx context.Context, limit int) ([]PublicAccount, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	accounts, err := e.accounts.ListAccounts(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]PublicAccount, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, publicAccount(account))
	}
	return out, nil
}

func (e *Engine) findAccount(ctx context.Context, accountID string) (*Account, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}
	account, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return account, nil
}
