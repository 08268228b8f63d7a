// Package notify delivers Tickora digests and alerts to chat platforms.
package notify

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Notifier sends a message to one chat platform.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a platform-neutral chat message. Channel may be empty to use
// the notifier's default channel.
type Message struct {
	Channel string
	Title   string
	Text    string
	Color   string // sidebar color hint, e.g. "#36a64f"
	Fields  []Field
}

// Field is a key-value pair displayed with a message.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Colors used for sprint health.
const (
	ColorGood    = "#36a64f"
	ColorWarning = "#daa038"
	ColorDanger  = "#d00000"
)

// Multi fans a message out to every notifier, continuing past failures.
type Multi []Notifier

// Send delivers msg to all notifiers and combines their errors.
func (m Multi) Send(ctx context.Context, msg Message) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.Send(ctx, msg))
	}
	return err
}

// Mock records sent messages for tests.
type Mock struct {
	mu   sync.Mutex
	sent []Message
	Err  error // returned from Send when set
}

// Send records msg, or returns m.Err.
func (m *Mock) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of all recorded messages.
func (m *Mock) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastSent returns the most recent message, and false if none was sent.
func (m *Mock) LastSent() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}
