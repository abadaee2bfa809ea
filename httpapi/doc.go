// Package httpapi exposes the account engine over HTTP.
//
// # Response contract
//
// Every endpoint answers with the uniform envelope
//
//	{"status": ..., "success": ..., "message": ..., "data": ..., "errors": ...}
//
// and the refresh token travels only in the httpOnly refreshToken cookie,
// never in a response body. Access tokens are returned in the body and sent
// back by clients as a Bearer header.
//
// # Routes
//
//	POST /api/auth/register             create account, send verification mail
//	POST /api/auth/login                issue access token + refresh cookie
//	POST /api/auth/refresh              rotate the refresh cookie
//	POST /api/auth/logout               revoke the cookie's session slot
//	GET  /api/auth/verify-email         confirm an email-action token
//	POST /api/auth/resend-verification  re-send the verification mail
//	POST /api/auth/forgot-password      issue a reset secret
//	POST /api/auth/reset-password       consume a reset secret
//	GET  /api/users/me                  authenticated profile
//	GET  /api/users/stats               authenticated activity stats
//	GET  /api/admin/dashboard           admin-only account listing + counters
//	GET  /healthz                       readiness probe
//
// # What this package must NOT do
//
//   - Touch the store or tokens directly; every decision goes through Engine.
//   - Reveal whether an email address exists on resend/forgot endpoints.
package httpapi
