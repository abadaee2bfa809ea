package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrExpired reports a structurally valid token whose lifetime has passed.
// Callers branch on it to give tailored "request a new one" guidance.
var ErrExpired = errors.New("token expired")

// ErrInvalid reports a token that failed signature, shape, or claim checks.
var ErrInvalid = errors.New("token invalid")

const (
	// DefaultAccessTTL is an exported constant or variable used by the account engine.
	DefaultAccessTTL = 30 * time.Minute
	// DefaultRefreshTTL is an exported constant or variable used by the account engine.
	DefaultRefreshTTL = 7 * 24 * time.Hour
	// DefaultEmailTTL is an exported constant or variable used by the account engine.
	DefaultEmailTTL = time.Hour
)

// Config carries the per-category signing secrets and lifetimes.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	EmailSecret   []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration

	Issuer string
}

// Manager signs and verifies the three bearer-token categories. Each category
// has its own secret so compromise of one does not invalidate the others, and
// a fixed expiry so callers cannot drift into inconsistent policy.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// AccessClaims is the claim set of a short-lived access token.
//
// AccessClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccessClaims struct {
	Role         string `json:"role"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set of a long-lived refresh token. The session id
// travels in the registered ID (jti) claim and is mirrored by exactly one
// stored refresh session.
//
// RefreshClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshClaims struct {
	TokenVersion int `json:"tv"`
	jwt.RegisteredClaims
}

// EmailClaims is the claim set of a single-purpose email-action token.
//
// EmailClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EmailClaims struct {
	jwt.RegisteredClaims
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 || len(cfg.EmailSecret) == 0 {
		return nil, errors.New("all three token secrets are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.EmailTTL <= 0 {
		cfg.EmailTTL = DefaultEmailTTL
	}

	return &Manager{config: cfg}, nil
}

// IssueAccess describes the issueaccess operation and its observable behavior.
//
// IssueAccess may return an error when input validation, dependency calls, or security checks fail.
// IssueAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) IssueAccess(accountID, role string, tokenVersion int) (string, error) {
	claims := AccessClaims{
		Role:             role,
		TokenVersion:     tokenVersion,
		RegisteredClaims: m.registered(accountID, m.config.AccessTTL),
	}
	return m.sign(claims, m.config.AccessSecret)
}

// IssueRefresh describes the issuerefresh operation and its observable behavior.
//
// IssueRefresh may return an error when input validation, dependency calls, or security checks fail.
// IssueRefresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) IssueRefresh(accountID string, tokenVersion int, sessionID string) (string, error) {
	registered := m.registered(accountID, m.config.RefreshTTL)
	registered.ID = sessionID
	claims := RefreshClaims{
		TokenVersion:     tokenVersion,
		RegisteredClaims: registered,
	}
	return m.sign(claims, m.config.RefreshSecret)
}

// IssueEmailAction describes the issueemailaction operation and its observable behavior.
//
// IssueEmailAction may return an error when input validation, dependency calls, or security checks fail.
// IssueEmailAction does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) IssueEmailAction(accountID string) (string, error) {
	claims := EmailClaims{
		RegisteredClaims: m.registered(accountID, m.config.EmailTTL),
	}
	return m.sign(claims, m.config.EmailSecret)
}

// ParseAccess describes the parseaccess operation and its observable behavior.
//
// ParseAccess may return an error when input validation, dependency calls, or security checks fail.
// ParseAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims, m.config.AccessSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ParseRefresh describes the parserefresh operation and its observable behavior.
//
// ParseRefresh may return an error when input validation, dependency calls, or security checks fail.
// ParseRefresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, claims, m.config.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ParseEmailAction describes the parseemailaction operation and its observable behavior.
//
// ParseEmailAction may return an error when input validation, dependency calls, or security checks fail.
// ParseEmailAction does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) ParseEmailAction(tokenStr string) (*EmailClaims, error) {
	claims := &EmailClaims{}
	if err := m.parse(tokenStr, claims, m.config.EmailSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

func (m *Manager) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	registered := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	if m.config.Issuer != "" {
		registered.Issuer = m.config.Issuer
	}
	return registered
}

func (m *Manager) sign(claims jwt.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalid
	}
	if !parsed.Valid {
		return ErrInvalid
	}
	return nil
}
