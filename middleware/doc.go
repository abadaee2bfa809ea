// Package middleware exposes HTTP middleware adapters built on top of
// authcore.Engine authentication.
//
// # Guards
//
//   - [Guard]: verifies the access token and injects an [authcore.Identity]
//     into the request context.
//   - [RequireRole]: role check layered after Guard.
//
// Each guard reads the Authorization header (falling back to the accessToken
// cookie), calls Engine.Authenticate, and rejects with the uniform response
// envelope on failure.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; all decisions are delegated to
// Engine.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject.
package middleware
