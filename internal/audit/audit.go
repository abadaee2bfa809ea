package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Type names one kind of account-flow event. The vocabulary is closed: every
// event the engine emits carries one of the constants below.
type Type string

const (
	TypeRegisterSuccess       Type = "register_success"
	TypeRegisterDuplicate     Type = "register_duplicate"
	TypeRegisterFailure       Type = "register_failure"
	TypeLoginSuccess          Type = "login_success"
	TypeLoginFailure          Type = "login_failure"
	TypeSessionEvicted        Type = "session_evicted"
	TypeRefreshSuccess        Type = "refresh_success"
	TypeRefreshInvalid        Type = "refresh_invalid"
	TypeLogoutSession         Type = "logout_session"
	TypeEmailVerifyRequest    Type = "email_verification_request"
	TypeEmailVerifyConfirm    Type = "email_verification_confirm"
	TypePasswordResetRequest  Type = "password_reset_request"
	TypePasswordResetConfirm  Type = "password_reset_confirm"
	TypePasswordResetInvalid  Type = "password_reset_invalid"
	TypeAccessDenied          Type = "access_denied"
	TypeAccessVersionMismatch Type = "access_version_mismatch"
)

// Event is a single security-relevant occurrence in an account flow.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	EventType  Type              `json:"event_type"`
	AccountID  string            `json:"account_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	ClientHint string            `json:"client_hint,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Sink receives dispatched events. Implementations must not block
// indefinitely; the dispatcher serializes calls.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events to a buffered channel for consumption by
// caller-owned goroutines.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON line per event to the wrapped writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
