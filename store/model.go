package store

import (
	"time"
)

// Role values assignable to an account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Reset secret kinds. A link-style secret carries a high-entropy token in a
// URL; an OTP is a short numeric code typed by the account holder.
const (
	ResetKindToken = "token"
	ResetKindOTP   = "otp"
)

// RefreshSession is one device slot in an account's session list. The ID
// mirrors the jti claim of exactly one outstanding refresh token.
//
// RefreshSession instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshSession struct {
	ID         string    `json:"id"`
	ClientHint string    `json:"client_hint,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResetSecret is the pending password-reset challenge for an account. Only
// the SHA-256 digest of the secret is stored; at most one challenge exists
// per account and issuing a new one replaces it.
//
// ResetSecret instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetSecret struct {
	Digest    string    `json:"digest"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Account is the persisted account document. Sessions are ordered oldest
// first; appends go to the tail and cap eviction removes the head.
//
// Account instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Account struct {
	ID            string           `json:"id"`
	Username      string           `json:"username"`
	Email         string           `json:"email"`
	PasswordHash  string           `json:"password_hash"`
	Role          string           `json:"role"`
	EmailVerified bool             `json:"email_verified"`
	TokenVersion  int              `json:"token_version"`
	LoginCount    int64            `json:"login_count"`
	Sessions      []RefreshSession `json:"sessions,omitempty"`
	ResetSecret   *ResetSecret     `json:"reset_secret,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	LastLoginAt   time.Time        `json:"last_login_at,omitzero"`
}

// SessionIndex returns the position of the session with the given id, or -1.
func (a *Account) SessionIndex(sessionID string) int {
	for i := range a.Sessions {
		if a.Sessions[i].ID == sessionID {
			return i
		}
	}
	return -1
}
