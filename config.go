package authcore

import (
	"errors"
	"time"

	"github.com/MrEthical07/authcore/token"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Session  SessionConfig
	Reset    ResetConfig
	App      AppConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authcore APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	EmailSecret   []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration

	Issuer string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authcore APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by authcore APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	MaxPerAccount int
	RedisPrefix   string
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetStrategyType defines a public type used by authcore APIs.
//
// ResetStrategyType instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetStrategyType int

const (
	// ResetToken is an exported constant or variable used by the account engine.
	ResetToken ResetStrategyType = iota
	// ResetOTP is an exported constant or variable used by the account engine.
	ResetOTP
)

const (
	// ResetMethodToken is an exported constant or variable used by the account engine.
	ResetMethodToken = "token"
	// ResetMethodOTP is an exported constant or variable used by the account engine.
	ResetMethodOTP = "otp"
)

// ResetConfig defines a public type used by authcore APIs. Strategy is the
// method used when a forgot-password call does not name one; callers may
// request either method per call.
//
// ResetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetConfig struct {
	Strategy  ResetStrategyType
	TTL       time.Duration
	OTPDigits int
}

/*
====================================
APP CONFIG
====================================
*/

// AppConfig defines a public type used by authcore APIs.
//
// AppConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AppConfig struct {
	Name       string
	BaseURL    string
	Production bool
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

const (
	// DefaultMaxSessions is an exported constant or variable used by the account engine.
	DefaultMaxSessions = 5
	// DefaultResetTTL is an exported constant or variable used by the account engine.
	DefaultResetTTL = 10 * time.Minute
	// DefaultOTPDigits is an exported constant or variable used by the account engine.
	DefaultOTPDigits = 6
)

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  token.DefaultAccessTTL,
			RefreshTTL: token.DefaultRefreshTTL,
			EmailTTL:   token.DefaultEmailTTL,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Session: SessionConfig{
			MaxPerAccount: DefaultMaxSessions,
			RedisPrefix:   "ac",
		},
		Reset: ResetConfig{
			Strategy:  ResetToken,
			TTL:       DefaultResetTTL,
			OTPDigits: DefaultOTPDigits,
		},
		App: AppConfig{
			Name:    "authcore",
			BaseURL: "http://localhost:3000",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	clone := cfg
	clone.Token.AccessSecret = append([]byte(nil), cfg.Token.AccessSecret...)
	clone.Token.RefreshSecret = append([]byte(nil), cfg.Token.RefreshSecret...)
	clone.Token.EmailSecret = append([]byte(nil), cfg.Token.EmailSecret...)
	return clone
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.Token.AccessSecret) == 0 || len(c.Token.RefreshSecret) == 0 || len(c.Token.EmailSecret) == 0 {
		return errors.New("all three token secrets are required")
	}
	if c.Session.MaxPerAccount <= 0 {
		return errors.New("session MaxPerAccount must be positive")
	}
	if c.Reset.TTL <= 0 {
		return errors.New("reset TTL must be positive")
	}
	if c.Reset.OTPDigits != 0 && (c.Reset.OTPDigits < 4 || c.Reset.OTPDigits > 10) {
		return errors.New("reset OTPDigits must be between 4 and 10")
	}
	if c.App.BaseURL == "" {
		return errors.New("app BaseURL required")
	}
	return nil
}
