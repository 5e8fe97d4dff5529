// Package inmemory is a process-local MessageBus for tests and the
// bundled single-process demo. Grounded on the teacher's
// internal/engine/frontier.go blocking-queue design: a mutex plus
// sync.Cond guarding a slice, with a closed flag woken into every
// waiter on shutdown. That design backed a container/heap priority
// queue of fetch requests; here it backs a plain FIFO slice per
// partition, since ordering within a partition is all spec.md's bus
// model requires.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IshaanNene/scoregoat/internal/bus"
)

// Bus is a fixed-partition-count, in-process MessageBus. Producer
// writes go to the "scoring" queue; Consumer reads come from the
// partition queue they were opened against.
type Bus struct {
	mu         sync.Mutex
	cond       *sync.Cond
	partitions map[int]*queue
	scoring    *queue
	closed     bool
}

type queue struct {
	items  []bus.Message
	offset int64
}

// New creates a Bus with the given spider-log partition count.
func New(partitions int) *Bus {
	b := &Bus{
		partitions: make(map[int]*queue, partitions),
		scoring:    &queue{},
	}
	b.cond = sync.NewCond(&b.mu)
	for p := 0; p < partitions; p++ {
		b.partitions[p] = &queue{}
	}
	return b
}

// PublishSpiderLog injects a message onto a spider-log partition, as a
// test harness or an external producer process would.
func (b *Bus) PublishSpiderLog(partition int, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.partitions[partition]
	if !ok {
		return fmt.Errorf("inmemory bus: unknown partition %d", partition)
	}
	q.items = append(q.items, bus.Message{Partition: partition, Offset: q.offset, Payload: payload})
	q.offset++
	b.cond.Broadcast()
	return nil
}

// DrainScoringLog removes and returns every message currently queued on
// the scoring log, for test assertions.
func (b *Bus) DrainScoringLog() []bus.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.scoring.items
	b.scoring.items = nil
	return out
}

// Consumer opens a Consumer bound to the given spider-log partition.
func (b *Bus) Consumer(partition int) (bus.Consumer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.partitions[partition]; !ok {
		return nil, fmt.Errorf("inmemory bus: unknown partition %d", partition)
	}
	return &consumer{bus: b, partition: partition}, nil
}

// Producer opens a Producer writing to the scoring log.
func (b *Bus) Producer() (bus.Producer, error) {
	return &producer{bus: b}, nil
}

// Close wakes every blocked GetMessages call with an empty result.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
	return nil
}

type consumer struct {
	bus       *Bus
	partition int
}

func (c *consumer) Partition() int { return c.partition }

func (c *consumer) GetMessages(ctx context.Context, count int, timeout time.Duration) ([]bus.Message, error) {
	b := c.bus
	deadline := time.Now().Add(timeout)

	b.mu.Lock()
	defer b.mu.Unlock()

	q := b.partitions[c.partition]
	for len(q.items) == 0 && !b.closed {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		waitOnCond(b.cond, remaining)
	}
	if b.closed && len(q.items) == 0 {
		return nil, nil
	}

	n := count
	if n > len(q.items) {
		n = len(q.items)
	}
	out := make([]bus.Message, n)
	copy(out, q.items[:n])
	q.items = q.items[n:]
	return out, nil
}

func (c *consumer) Close() error { return nil }

// waitOnCond wraps cond.Wait with a timer-driven wake, since sync.Cond
// has no native timed wait. Must be called with cond.L held; returns
// with cond.L held. The caller's for-loop re-checks both the queue and
// the deadline after every wake, spurious or not.
func waitOnCond(cond *sync.Cond, timeout time.Duration) {
	timer := time.AfterFunc(timeout, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}

type producer struct {
	bus *Bus
}

func (p *producer) Send(ctx context.Context, payload []byte) error {
	p.bus.mu.Lock()
	defer p.bus.mu.Unlock()
	q := p.bus.scoring
	q.items = append(q.items, bus.Message{Partition: 0, Offset: q.offset, Payload: payload})
	q.offset++
	return nil
}

func (p *producer) Flush(ctx context.Context) error { return nil }
func (p *producer) Close() error                    { return nil }
