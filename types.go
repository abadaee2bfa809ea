package authcore

import (
	"time"

	"github.com/MrEthical07/authcore/store"
)

// Account is the persisted account document, aliased from the store package
// so engine callers do not import it directly.
type Account = store.Account

// RefreshSession is one device slot in an account's session list.
type RefreshSession = store.RefreshSession

// Role values assignable to an account.
const (
	RoleUser  = store.RoleUser
	RoleAdmin = store.RoleAdmin
)

// PublicAccount is the client-visible projection of an account. It never
// carries the password hash, session list, or reset challenge.
//
// PublicAccount instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PublicAccount struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity is the authenticated caller derived from a verified access token,
// refreshed against the current account state.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	AccountID     string
	Username      string
	Email         string
	Role          string
	EmailVerified bool
	TokenVersion  int
}

// RegisterInput carries the fields of an account registration.
//
// RegisterInput instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is the outcome of a successful login.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	Evicted      bool
	Account      PublicAccount
}

// RefreshResult is the outcome of a successful refresh rotation. The
// presented refresh token is dead once this is returned.
//
// RefreshResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
}

// AccountStats is the activity summary exposed to the account holder.
//
// AccountStats instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountStats struct {
	LoginCount     int64     `json:"loginCount"`
	ActiveSessions int       `json:"activeSessions"`
	LastLoginAt    time.Time `json:"lastLoginAt,omitzero"`
	MemberSince    time.Time `json:"memberSince"`
}

func publicAccount(account *Account) PublicAccount {
	return PublicAccount{
		ID:            account.ID,
		Username:      account.Username,
		Email:         account.Email,
		Role:          account.Role,
		EmailVerified: account.EmailVerified,
		CreatedAt:     account.CreatedAt,
	}
}
