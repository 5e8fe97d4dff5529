package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsWorkUntilFinished(t *testing.T) {
	var calls atomic.Int32
	workFn := func(ctx context.Context) (bool, error) {
		n := calls.Add(1)
		return n >= 3, nil
	}

	s := NewScheduler(workFn, func() {}, func() error { return nil }, time.Hour, discardLogger())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after work reported finished")
	}

	if calls.Load() != 3 {
		t.Errorf("expected exactly 3 work calls, got %d", calls.Load())
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	workFn := func(ctx context.Context) (bool, error) { return false, nil }
	s := NewScheduler(workFn, func() {}, func() error { return nil }, time.Hour, discardLogger())

	s.Stop()
	s.Stop() // must not panic

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not honor a Stop called before Run")
	}
}

func TestSchedulerStopFromOutsideStopsRunLoop(t *testing.T) {
	workFn := func(ctx context.Context) (bool, error) { return false, nil }
	s := NewScheduler(workFn, func() {}, func() error { return nil }, time.Hour, discardLogger())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Wait()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after Stop")
	}
}
