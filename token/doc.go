// Package token signs and verifies the three bearer-token categories used by
// the account engine: access (30m), refresh (7d), and email-action (1h).
//
// Each category has its own HS256 secret and a fixed lifetime. Verification
// failures collapse into exactly two variants, [ErrExpired] and [ErrInvalid],
// so callers match on a closed tag set instead of inspecting library errors.
//
// # Architecture boundaries
//
// This package is pure and stateless: no I/O, no account lookups. Whether a
// token's version or session still stands is the Engine's decision.
//
// # What this package must NOT do
//
//   - Touch the store or any network dependency.
//   - Expose golang-jwt error values to callers.
//   - Accept per-call expiry overrides.
package token
