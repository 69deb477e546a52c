// Package publish fans decision artifacts out to downstream consumers.
package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Message kinds. The kind doubles as the routing key.
const (
	KindCycleReport     = "cycle_report"
	KindExecutionBundle = "execution_bundle"
	KindGuardianPolicy  = "guardian_policy"
)

// ErrClosed is returned when publishing on a closed publisher.
var ErrClosed = errors.New("publisher closed")

// Message is one published artifact. Body is JSON.
type Message struct {
	Kind string
	Key  string
	Body []byte
}

// Publisher delivers messages. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Noop discards every message.
type Noop struct{}

func (Noop) Publish(context.Context, Message) error { return nil }
func (Noop) Close() error                           { return nil }

// Memory keeps published messages in order. Used by tests and dry runs.
type Memory struct {
	mu     sync.Mutex
	msgs   []Message
	closed bool
}

// NewMemory creates an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records a copy of msg.
func (m *Memory) Publish(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	msg.Body = append([]byte(nil), msg.Body...)
	m.msgs = append(m.msgs, msg)
	return nil
}

// Messages returns the published messages, optionally filtered by kind.
func (m *Memory) Messages(kind string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, 0, len(m.msgs))
	for _, msg := range m.msgs {
		if kind == "" || msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

// Close rejects further publishes.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var (
	_ Publisher = Noop{}
	_ Publisher = (*Memory)(nil)
)

// Publisher drivers.
const (
	DriverNone     = "none"
	DriverRabbitMQ = "rabbitmq"
)

// Open creates the publisher for driver. An empty driver means none.
func Open(driver string, rabbit RabbitMQConfig) (Publisher, error) {
	switch driver {
	case DriverNone, "":
		return Noop{}, nil
	case DriverRabbitMQ:
		return NewRabbitMQPublisher(rabbit)
	}
	return nil, fmt.Errorf("unknown publish driver %q", driver)
}
