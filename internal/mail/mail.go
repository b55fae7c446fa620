// Package mail delivers account notification messages
package mail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type (
	// Message is a plain-text notification for one recipient
	Message struct {
		To      string
		Subject string
		Body    string
	}

	// Mailer sends messages
	Mailer interface {
		Send(ctx context.Context, msg Message) error
	}

	// LogMailer writes messages to the structured log instead of sending
	// them. It is the default when no outbound transport is configured
	LogMailer struct {
		logger *slog.Logger
	}

	// Outbox keeps every message it is given, for inspection
	Outbox struct {
		messages []Message
		mu       sync.Mutex
	}
)

var ErrNoRecipient = errors.New("message has no recipient")

var (
	_ Mailer = (*LogMailer)(nil)
	_ Mailer = (*Outbox)(nil)
)

// NewLogMailer creates a LogMailer. A nil logger uses slog.Default()
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	logger := m.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body))
	return nil
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.messages...)
}

// Last returns the most recent message, if any
func (o *Outbox) Last() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.messages) == 0 {
		return Message{}, false
	}
	return o.messages[len(o.messages)-1], true
}
