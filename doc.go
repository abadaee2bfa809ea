// Package authcore provides an account and session lifecycle engine with JWT
// access tokens, rotating refresh sessions capped per account, mass token
// invalidation via a per-account token version, email verification, and
// single-use time-boxed password reset secrets.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the error taxonomy, and value types (LoginResult, PublicAccount, etc.).
// Persistence lives in the store sub-package, token signing in token, and
// audit dispatch under internal/.
//
// # What this package must NOT do
//
//   - Expose the store's key layout or document encoding in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports authcore (no import cycles).
//
// # Invalidation contract
//
// A refresh token is valid only while its session slot exists and its token
// version matches the account. Rotation replaces the slot atomically, so each
// refresh token is usable exactly once. A password reset bumps the version
// and clears every slot, killing all outstanding tokens together.
package authcore
