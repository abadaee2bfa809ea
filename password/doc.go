// Package password implements credential hashing for the account engine.
//
// # Output format
//
// Account password hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Short-lived secrets (reset link tokens, OTPs) use [FastDigest], a plain
// SHA-256 hex digest: those values are high-entropy and single-use, and the
// digest doubles as an equality-lookup key.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length
// rules, which flows may rehash) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords: callers supply plaintext and receive hashes.
//   - Import any other authcore package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
