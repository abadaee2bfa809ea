// Package store persists account documents in Redis for the account engine.
//
// # Layout
//
// Each account is one JSON document under <prefix>:acct:<id>. Uniqueness of
// username and email is enforced through index keys
// (<prefix>:idx:username:<v>, <prefix>:idx:email:<v>) claimed in the same Lua
// script that writes the document, so concurrent registrations of the same
// identifier cannot both win. A pending reset challenge additionally owns a
// TTL-bounded digest index key (<prefix>:idx:reset:<digest>) for constant-time
// lookup by digest.
//
// # Concurrency
//
// Document mutations run as optimistic WATCH transactions with a bounded
// retry loop. Session append, rotation, removal, and credential reset all go
// through this path, which is what makes refresh-token rotation single-use:
// of two racing rotations of the same slot, exactly one commits.
//
// # Architecture boundaries
//
// The store holds no policy. Session caps, secret lifetimes, and password
// rules arrive as arguments; decisions about them live in the Engine.
//
// # What this package must NOT do
//
//   - See plaintext passwords or reset secrets, only their hashes/digests.
//   - Import any authcore package other than the Redis client.
package store
