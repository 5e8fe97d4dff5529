// Package bus defines the message-bus abstraction the worker consumes
// spider-log events from and produces scoring-log events to (spec.md
// §6.1 MESSAGE_BUS). Implementations are partition-aware: a spider-log
// partition maps to one Consumer, and the scoring log is a single
// Producer the whole worker process shares.
package bus

import (
	"context"
	"time"
)

// Message is an opaque, codec-encoded payload plus the partition and
// offset it was read from (or, for production, the partition it should
// be written to).
type Message struct {
	Partition int
	Offset    int64
	Payload   []byte
}

// Consumer reads messages from one spider-log partition.
type Consumer interface {
	// GetMessages returns up to count messages, waiting at most timeout
	// for at least one to become available. A zero-length, nil-error
	// result means the wait elapsed with nothing to read (spec.md §4.3's
	// "no messages available" case, distinct from an error).
	GetMessages(ctx context.Context, count int, timeout time.Duration) ([]Message, error)

	// Partition returns the partition this consumer reads.
	Partition() int

	Close() error
}

// Producer writes messages to the scoring log.
type Producer interface {
	Send(ctx context.Context, payload []byte) error
	Flush(ctx context.Context) error
	Close() error
}

// MessageBus opens consumers and producers by partition.
type MessageBus interface {
	Consumer(partition int) (Consumer, error)
	Producer() (Producer, error)
	Close() error
}
