package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
)

// Notifier delivers account-flow messages to an address. Implementations
// must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig carries relay settings for the SMTP mailer.
//
// SMTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether enough relay settings are present to deliver.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// SMTPMailer sends HTML mail through a single relay. When the relay is not
// configured it accepts every message and delivers nothing, so account flows
// stay usable in environments without mail credentials.
//
// SMTPMailer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer describes the newsmtpmailer operation and its observable behavior.
//
// NewSMTPMailer may return an error when input validation, dependency calls, or security checks fail.
// NewSMTPMailer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg}
}

// Send describes the send operation and its observable behavior.
//
// Send may return an error when input validation, dependency calls, or security checks fail.
// Send does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.cfg.Configured() {
		return nil
	}
	if to == "" {
		return errors.New("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String()))
}

// NoOpNotifier accepts every message and delivers nothing.
type NoOpNotifier struct{}

func (NoOpNotifier) Send(context.Context, string, string, string) error {
	return nil
}

// CapturedMessage is one message recorded by a CaptureNotifier.
type CapturedMessage struct {
	To      string
	Subject string
	Body    string
}

// CaptureNotifier records messages in memory for inspection by tests.
type CaptureNotifier struct {
	mu       sync.Mutex
	messages []CapturedMessage
}

func NewCaptureNotifier() *CaptureNotifier {
	return &CaptureNotifier{}
}

func (n *CaptureNotifier) Send(_ context.Context, to, subject, htmlBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, CapturedMessage{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Messages returns a copy of everything recorded so far.
func (n *CaptureNotifier) Messages() []CapturedMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]CapturedMessage, len(n.messages))
	copy(out, n.messages)
	return out
}
