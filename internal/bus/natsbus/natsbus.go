// Package natsbus is a NATS JetStream-backed MessageBus: spider-log
// partitions map to JetStream subjects "spider-log.<partition>",
// consumed by durable pull consumers so offsets survive worker
// restarts; the scoring log is a single subject "scoring-log" the
// worker process publishes to.
//
// Grounded on WessleyAI-wessley-mvp's pkg/natsutil/natsutil.go, whose
// Publish/Subscribe helpers establish this codebase's nats.go usage
// pattern (typed JSON envelopes over nc.PublishMsg/nc.Subscribe); this
// package trades that plain pub/sub for JetStream's durable pull
// consumer API, since spec.md §6.1's consumer needs an explicit
// bounded GetMessages call rather than a push callback.
package natsbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/IshaanNene/scoregoat/internal/bus"
)

const (
	spiderLogStream  = "SPIDER_LOG"
	scoringLogStream = "SCORING_LOG"
	scoringSubject   = "scoring-log"
)

// Bus is a JetStream-backed MessageBus.
type Bus struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// New connects to the given NATS URL and ensures the spider-log and
// scoring-log streams exist.
func New(ctx context.Context, url string, partitions int) (*Bus, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("natsbus: connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsbus: jetstream: %w", err)
	}

	subjects := make([]string, partitions)
	for p := 0; p < partitions; p++ {
		subjects[p] = fmt.Sprintf("spider-log.%d", p)
	}
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     spiderLogStream,
		Subjects: subjects,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsbus: create spider-log stream: %w", err)
	}
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     scoringLogStream,
		Subjects: []string{scoringSubject},
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsbus: create scoring-log stream: %w", err)
	}

	return &Bus{conn: nc, js: js}, nil
}

// Consumer opens (or resumes) a durable pull consumer bound to one
// spider-log partition.
func (b *Bus) Consumer(partition int) (bus.Consumer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subject := fmt.Sprintf("spider-log.%d", partition)
	cons, err := b.js.CreateOrUpdateConsumer(ctx, spiderLogStream, jetstream.ConsumerConfig{
		Durable:       fmt.Sprintf("strategy-worker-p%d", partition),
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("natsbus: consumer partition %d: %w", partition, err)
	}
	return &consumer{partition: partition, cons: cons}, nil
}

// Producer opens a Producer bound to the scoring log.
func (b *Bus) Producer() (bus.Producer, error) {
	return &producer{js: b.js}, nil
}

// Close closes the underlying NATS connection.
func (b *Bus) Close() error {
	b.conn.Close()
	return nil
}

type consumer struct {
	partition int
	cons      jetstream.Consumer
}

func (c *consumer) Partition() int { return c.partition }

func (c *consumer) GetMessages(ctx context.Context, count int, timeout time.Duration) ([]bus.Message, error) {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	batch, err := c.cons.Fetch(count, jetstream.FetchMaxWait(timeout))
	if err != nil {
		if errors.Is(err, nats.ErrTimeout) || errors.Is(fctx.Err(), context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("natsbus: fetch partition %d: %w", c.partition, err)
	}

	var out []bus.Message
	for msg := range batch.Messages() {
		meta, err := msg.Metadata()
		var offset int64
		if err == nil {
			offset = int64(meta.Sequence.Stream)
		}
		out = append(out, bus.Message{Partition: c.partition, Offset: offset, Payload: msg.Data()})
		if err := msg.Ack(); err != nil {
			return out, fmt.Errorf("natsbus: ack partition %d: %w", c.partition, err)
		}
	}
	if err := batch.Error(); err != nil {
		return out, fmt.Errorf("natsbus: batch partition %d: %w", c.partition, err)
	}
	return out, nil
}

func (c *consumer) Close() error { return nil }

type producer struct {
	js jetstream.JetStream
}

func (p *producer) Send(ctx context.Context, payload []byte) error {
	_, err := p.js.Publish(ctx, scoringSubject, payload)
	if err != nil {
		return fmt.Errorf("natsbus: publish scoring-log: %w", err)
	}
	return nil
}

func (p *producer) Flush(ctx context.Context) error { return nil }
func (p *producer) Close() error                    { return nil }
