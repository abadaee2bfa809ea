package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is an exported constant or variable used by the account engine.
var ErrNotFound = errors.New("account not found")

// ErrSessionNotFound is returned when a session mutation targets an id absent
// from the account's session list.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnavailable is an exported constant or variable used by the account engine.
var ErrUnavailable = errors.New("account store unavailable")

// DuplicateFieldError reports which unique field collided during creation.
//
// DuplicateFieldError instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return e.Field + " already exists"
}

const casMaxRetries = 4

const createAccountScript = `
if redis.call("EXISTS", KEYS[2]) == 1 then
  return "username"
end
if redis.call("EXISTS", KEYS[3]) == 1 then
  return "email"
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
redis.call("SET", KEYS[3], ARGV[2])
return ""
`

var createAccountLua = redis.NewScript(createAccountScript)

// AccountStore persists account documents in Redis. Uniqueness of username
// and email is enforced through index keys written in the same Lua script as
// the document itself. Document mutations run under WATCH so concurrent
// writers to the same account serialize instead of clobbering each other.
//
// AccountStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewAccountStore describes the newaccountstore operation and its observable behavior.
//
// NewAccountStore may return an error when input validation, dependency calls, or security checks fail.
// NewAccountStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewAccountStore(redisClient redis.UniversalClient, prefix string) *AccountStore {
	if prefix == "" {
		prefix = "ac"
	}
	return &AccountStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *AccountStore) accountKey(id string) string {
	return s.prefix + ":acct:" + id
}

func (s *AccountStore) usernameKey(username string) string {
	return s.prefix + ":idx:username:" + strings.ToLower(username)
}

func (s *AccountStore) emailKey(email string) string {
	return s.prefix + ":idx:email:" + strings.ToLower(email)
}

func (s *AccountStore) resetKey(digest string) string {
	return s.prefix + ":idx:reset:" + digest
}

// Ping describes the ping operation and its observable behavior.
//
// Ping may return an error when input validation, dependency calls, or security checks fail.
// Ping does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Create persists a new account and claims its username and email index keys
// in one atomic step. A collision on either index aborts the whole write and
// reports the colliding field.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) Create(ctx context.Context, account *Account) error {
	encoded, err := json.Marshal(account)
	if err != nil {
		return err
	}

	keys := []string{
		s.accountKey(account.ID),
		s.usernameKey(account.Username),
		s.emailKey(account.Email),
	}

	result, err := createAccountLua.Run(ctx, s.redis, keys, encoded, account.ID).Text()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if result != "" {
		return &DuplicateFieldError{Field: result}
	}
	return nil
}

// FindByID describes the findbyid operation and its observable behavior.
//
// FindByID may return an error when input validation, dependency calls, or security checks fail.
// FindByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.getAccount(ctx, s.accountKey(id))
}

// FindByUsername describes the findbyusername operation and its observable behavior.
//
// FindByUsername may return an error when input validation, dependency calls, or security checks fail.
// FindByUsername does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return s.findByIndex(ctx, s.usernameKey(username))
}

// FindByEmail describes the findbyemail operation and its observable behavior.
//
// FindByEmail may return an error when input validation, dependency calls, or security checks fail.
// FindByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findByIndex(ctx, s.emailKey(email))
}

// FindByResetDigest resolves a reset-secret digest to its account. The digest
// must still match the account's pending challenge; a stale index entry left
// behind by a replaced challenge resolves to not found.
//
// FindByResetDigest may return an error when input validation, dependency calls, or security checks fail.
// FindByResetDigest does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) FindByResetDigest(ctx context.Context, digest string) (*Account, error) {
	account, err := s.findByIndex(ctx, s.resetKey(digest))
	if err != nil {
		return nil, err
	}
	if account.ResetSecret == nil || account.ResetSecret.Digest != digest {
		return nil, ErrNotFound
	}
	return account, nil
}

func (s *AccountStore) findByIndex(ctx context.Context, indexKey string) (*Account, error) {
	id, err := s.redis.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.getAccount(ctx, s.accountKey(id))
}

func (s *AccountStore) getAccount(ctx context.Context, key string) (*Account, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	account := &Account{}
	if err := json.Unmarshal(data, account); err != nil {
		return nil, err
	}
	return account, nil
}

// update applies mutate to the account document under WATCH and writes it
// back transactionally. extra, when non-nil, queues index-key commands into
// the same transaction. mutate errors abort without writing.
func (s *AccountStore) update(
	ctx context.Context,
	id string,
	mutate func(account *Account) error,
	extra func(pipe redis.Pipeliner, account *Account),
) (*Account, error) {
	key := s.accountKey(id)

	for i := 0; i < casMaxRetries; i++ {
		var updated *Account

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			account := &Account{}
			if err := json.Unmarshal(data, account); err != nil {
				return err
			}

			if err := mutate(account); err != nil {
				return err
			}
			account.UpdatedAt = time.Now().UTC()

			encoded, err := json.Marshal(account)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				if extra != nil {
					extra(pipe, account)
				}
				return nil
			})
			if err != nil {
				return err
			}

			updated = account
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrNotFound
			case errors.Is(err, ErrSessionNotFound):
				return nil, err
			default:
				if isDecodeError(err) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: cas retries exhausted", ErrUnavailable)
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// AppendSession adds a session slot, evicting the oldest when the account is
// at the cap, and records the login. Reports whether an eviction happened.
//
// AppendSession may return an error when input validation, dependency calls, or security checks fail.
// AppendSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) AppendSession(ctx context.Context, id string, session RefreshSession, maxSessions int) (*Account, bool, error) {
	evicted := false

	account, err := s.update(ctx, id, func(account *Account) error {
		evicted = false
		if maxSessions > 0 && len(account.Sessions) >= maxSessions {
			account.Sessions = account.Sessions[len(account.Sessions)-maxSessions+1:]
			evicted = true
		}
		account.Sessions = append(account.Sessions, session)
		account.LoginCount++
		account.LastLoginAt = time.Now().UTC()
		return nil
	}, nil)
	if err != nil {
		return nil, false, err
	}
	return account, evicted, nil
}

// RotateSession atomically removes one session slot and appends its
// successor at the tail, so the session list stays ordered oldest first and
// cap eviction never targets a freshly rotated device. The old id must still
// be present; a missing slot means the presented refresh token was already
// rotated or revoked.
//
// RotateSession may return an error when input validation, dependency calls, or security checks fail.
// RotateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) RotateSession(ctx context.Context, id, oldSessionID string, next RefreshSession) (*Account, error) {
	return s.update(ctx, id, func(account *Account) error {
		idx := account.SessionIndex(oldSessionID)
		if idx < 0 {
			return ErrSessionNotFound
		}
		account.Sessions = append(account.Sessions[:idx], account.Sessions[idx+1:]...)
		account.Sessions = append(account.Sessions, next)
		return nil
	}, nil)
}

// RemoveSession drops a session slot. Removing an id that is already gone is
// a no-op, so repeated logout of the same device succeeds.
//
// RemoveSession may return an error when input validation, dependency calls, or security checks fail.
// RemoveSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) RemoveSession(ctx context.Context, id, sessionID string) error {
	_, err := s.update(ctx, id, func(account *Account) error {
		idx := account.SessionIndex(sessionID)
		if idx >= 0 {
			account.Sessions = append(account.Sessions[:idx], account.Sessions[idx+1:]...)
		}
		return nil
	}, nil)
	return err
}

// SetResetSecret installs a new reset challenge, replacing any pending one,
// and points the digest index key at the account for the challenge lifetime.
//
// SetResetSecret may return an error when input validation, dependency calls, or security checks fail.
// SetResetSecret does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) SetResetSecret(ctx context.Context, id string, secret ResetSecret) error {
	var previousDigest string

	_, err := s.update(ctx, id, func(account *Account) error {
		previousDigest = ""
		if account.ResetSecret != nil {
			previousDigest = account.ResetSecret.Digest
		}
		account.ResetSecret = &secret
		return nil
	}, func(pipe redis.Pipeliner, account *Account) {
		if previousDigest != "" && previousDigest != secret.Digest {
			pipe.Del(ctx, s.resetKey(previousDigest))
		}
		ttl := time.Until(secret.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Second
		}
		pipe.Set(ctx, s.resetKey(secret.Digest), account.ID, ttl)
	})
	return err
}

// ResetCredentials installs a new password hash, bumps the token version,
// clears every session slot, and consumes the pending reset challenge. All
// outstanding tokens for the account are dead once this commits.
//
// ResetCredentials may return an error when input validation, dependency calls, or security checks fail.
// ResetCredentials does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) ResetCredentials(ctx context.Context, id, passwordHash string) (*Account, error) {
	var consumedDigest string

	return s.update(ctx, id, func(account *Account) error {
		consumedDigest = ""
		if account.ResetSecret != nil {
			consumedDigest = account.ResetSecret.Digest
		}
		account.PasswordHash = passwordHash
		account.TokenVersion++
		account.Sessions = nil
		account.ResetSecret = nil
		return nil
	}, func(pipe redis.Pipeliner, account *Account) {
		if consumedDigest != "" {
			pipe.Del(ctx, s.resetKey(consumedDigest))
		}
	})
}

// ListAccounts scans account documents and returns up to limit of them, in
// unspecified order. A limit of zero or less means no bound.
//
// ListAccounts may return an error when input validation, dependency calls, or security checks fail.
// ListAccounts does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) ListAccounts(ctx context.Context, limit int) ([]*Account, error) {
	var out []*Account

	iter := s.redis.Scan(ctx, 0, s.prefix+":acct:*", 100).Iterator()
	for iter.Next(ctx) {
		account, err := s.getAccount(ctx, iter.Val())
		if err != nil {
			// The key may expire or vanish between SCAN and GET.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, account)
		if limit > 0 && len(out) >= limit {
			return out, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

// SetEmailVerified marks the account's email as verified. Verifying an
// already-verified account is a no-op.
//
// SetEmailVerified may return an error when input validation, dependency calls, or security checks fail.
// SetEmailVerified does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *AccountStore) SetEmailVerified(ctx context.Context, id string) (*Account, error) {
	return s.update(ctx, id, func(account *Account) error {
		account.EmailVerified = true
		return nil
	}, nil)
}
