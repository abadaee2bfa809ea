// Package notify delivers account-flow email (verification links, reset
// links, OTP codes).
//
// The SMTP mailer degrades to a silent no-op when relay credentials are
// absent, so registration and reset flows keep working in development
// environments. Tests use [CaptureNotifier] to assert on outgoing messages.
//
// # What this package must NOT do
//
//   - Compose message content; subjects and bodies are built by the Engine.
//   - Retry or queue; delivery is single-shot and best effort at this layer.
package notify
