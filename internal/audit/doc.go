// Package audit provides asynchronous security-event dispatch for the account
// engine. Events are buffered in a channel and drained by a single goroutine,
// so flow hot paths never block on sink latency.
//
// # What this package must NOT do
//
//   - Decide which events exist; event-type vocabulary lives with the Engine.
//   - Carry secrets in event payloads.
package audit
