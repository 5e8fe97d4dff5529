package worker

import (
	"context"
	"testing"
	"time"

	"github.com/IshaanNene/scoregoat/internal/bus/inmemory"
	"github.com/IshaanNene/scoregoat/internal/codec/jsoncodec"
	"github.com/IshaanNene/scoregoat/internal/states/memorybackend"
	"github.com/IshaanNene/scoregoat/internal/stats"
	"github.com/IshaanNene/scoregoat/internal/types"
)

// TestWorkerRunDrainsOnFinished wires a full Worker over the in-memory
// bus and backend, publishes one seed, and checks that the worker
// drains cleanly once the (fake) strategy reports finished after a
// single batch — exercising the whole Init->Running->Draining->Stopped
// path end to end, in the style of the teacher's tests/integration_test.go
// (wiring real collaborators rather than mocking each one).
func TestWorkerRunDrainsOnFinished(t *testing.T) {
	b := inmemory.New(1)
	codec := jsoncodec.New()
	backend := memorybackend.New()

	consumer, err := b.Consumer(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	producer, err := b.Producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seed, _ := types.NewRequest("https://example.com/")
	payload, err := codec.Encode(&types.Event{Tag: types.EventAddSeeds, Seeds: []*types.Request{seed}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.PublishSpiderLog(0, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	strat := newFakeStrategy()
	strat.finished = true // drains right after the first batch

	w := New(Config{
		Consumer:      consumer,
		Producer:      producer,
		Codec:         codec,
		Backend:       backend,
		Strategy:      strat,
		JobID:         1,
		PartitionID:   0,
		BatchSize:     16,
		FlushInterval: time.Hour,
		Logger:        discardLogger(),
	})

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error from Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not drain in time")
	}

	if w.lifecycle.Phase() != PhaseStopped {
		t.Errorf("expected PhaseStopped, got %s", w.lifecycle.Phase())
	}
	if !strat.closed {
		t.Error("expected strategy.Close to have been called during drain")
	}
	if len(strat.seeds) != 1 {
		t.Errorf("expected 1 seed dispatched, got %d", len(strat.seeds))
	}
}

func TestWorkerReportStatusEmitsToSinks(t *testing.T) {
	b := inmemory.New(1)
	consumer, _ := b.Consumer(0)
	producer, _ := b.Producer()

	strat := newFakeStrategy()
	sink := &recordingSink{}

	w := New(Config{
		Consumer:      consumer,
		Producer:      producer,
		Codec:         jsoncodec.New(),
		Backend:       memorybackend.New(),
		Strategy:      strat,
		JobID:         1,
		PartitionID:   0,
		BatchSize:     16,
		FlushInterval: time.Hour,
		Sinks:         []stats.Sink{sink},
		Logger:        discardLogger(),
	})

	w.reportStatus()

	if sink.calls != 1 {
		t.Fatalf("expected exactly 1 Emit call, got %d", sink.calls)
	}
}

type recordingSink struct {
	calls int
}

func (s *recordingSink) Emit(tags map[string]string, counters map[string]int64) {
	s.calls++
}
