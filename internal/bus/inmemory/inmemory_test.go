package inmemory

import (
	"context"
	"testing"
	"time"
)

func TestProducerConsumerRoundTrip(t *testing.T) {
	b := New(2)

	producer, err := b.Producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.PublishSpiderLog(0, []byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	consumer, err := b.Consumer(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs, err := consumer.GetMessages(context.Background(), 10, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 || string(msgs[0].Payload) != "hello" {
		t.Fatalf("unexpected messages: %v", msgs)
	}

	_ = producer
}

func TestConsumerGetMessagesTimesOutEmpty(t *testing.T) {
	b := New(1)
	consumer, err := b.Consumer(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	msgs, err := consumer.GetMessages(context.Background(), 5, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %v", msgs)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("expected GetMessages to respect the timeout, returned after %s", elapsed)
	}
}

func TestConsumerRespectsBatchSize(t *testing.T) {
	b := New(1)
	for i := 0; i < 5; i++ {
		if err := b.PublishSpiderLog(0, []byte{byte(i)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	consumer, _ := b.Consumer(0)
	msgs, err := consumer.GetMessages(context.Background(), 3, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
}

func TestScoringLogDrain(t *testing.T) {
	b := New(1)
	producer, _ := b.Producer()
	if err := producer.Send(context.Background(), []byte("score")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scored := b.DrainScoringLog()
	if len(scored) != 1 || string(scored[0].Payload) != "score" {
		t.Fatalf("unexpected scoring log contents: %v", scored)
	}
}

func TestConsumerPartition(t *testing.T) {
	b := New(3)
	consumer, err := b.Consumer(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumer.Partition() != 2 {
		t.Errorf("expected partition 2, got %d", consumer.Partition())
	}
}
