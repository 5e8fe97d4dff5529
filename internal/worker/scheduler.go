package worker

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// statusLogInterval is the status-log task period (spec.md §4.5).
const statusLogInterval = 30 * time.Second

// restartBurst/restartEvery bound how fast a persistently failing task
// may retry, so a permanently broken backend logs and spins at a
// sane rate instead of a tight loop (spec.md §7 allows looping hot;
// this just keeps it from pegging a CPU core). Grounded on
// WessleyAI-wessley-mvp/engine/scraper/youtube.go's
// rate.NewLimiter(rate.Every(...), burst) pattern.
const (
	restartEvery = 200 * time.Millisecond
	restartBurst = 5
)

// Scheduler runs the worker's three cooperative periodic tasks (work,
// status, flush) on a single timeline: no two task handlers ever run
// concurrently with each other (spec.md §4.5, §5). Grounded on the
// teacher's internal/engine/engine.go autoCheckpoint ticker/ctx.Done
// loop, generalized from one ticker task into three, all dispatched
// from the same goroutine so the cooperative-scheduling invariant
// holds without any locking.
type Scheduler struct {
	workFn   func(ctx context.Context) (finished bool, err error)
	statusFn func()
	flushFn  func() error

	flushInterval  time.Duration
	logger         *slog.Logger
	restartLimiter *rate.Limiter

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewScheduler builds a Scheduler. flushInterval is SW_FLUSH_INTERVAL
// from config; the flush task's initial delay is uniformly sampled
// from [0, flushInterval] to desynchronize workers in the fleet
// (spec.md §4.5, §8 property 6, §9).
func NewScheduler(
	workFn func(ctx context.Context) (finished bool, err error),
	statusFn func(),
	flushFn func() error,
	flushInterval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		workFn:         workFn,
		statusFn:       statusFn,
		flushFn:        flushFn,
		flushInterval:  flushInterval,
		logger:         logger.With("component", "scheduler"),
		restartLimiter: rate.NewLimiter(rate.Every(restartEvery), restartBurst),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Run drives all three tasks on one goroutine until the context is
// cancelled, Stop is called, or the work task reports the strategy
// finished. It blocks until the run loop exits.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.doneCh)

	statusTimer := time.NewTimer(statusLogInterval)
	defer statusTimer.Stop()

	initialFlushDelay := time.Duration(rand.Int63n(int64(s.flushInterval) + 1))
	flushTimer := time.NewTimer(initialFlushDelay)
	defer flushTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-statusTimer.C:
			s.runStatus()
			statusTimer.Reset(statusLogInterval)
		case <-flushTimer.C:
			s.runFlush(ctx)
			flushTimer.Reset(s.flushInterval)
		default:
			finished, stop := s.runWork(ctx)
			if finished || stop {
				return
			}
		}
	}
}

// Stop halts the scheduler loop. Idempotent (spec.md §4.7, §8
// property 5): closing an already-closed channel would panic, so a
// select-based guard makes repeated calls safe.
func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh:
		return
	default:
		close(s.stopCh)
	}
}

// Wait blocks until Run has returned.
func (s *Scheduler) Wait() {
	<-s.doneCh
}

func (s *Scheduler) runWork(ctx context.Context) (finished, stop bool) {
	select {
	case <-s.stopCh:
		return false, true
	case <-ctx.Done():
		return false, true
	default:
	}

	f, err := s.workFn(ctx)
	if err != nil {
		s.logger.Error("work task failed, restarting", "error", err)
		_ = s.restartLimiter.Wait(ctx)
		return false, false
	}
	return f, false
}

func (s *Scheduler) runStatus() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("status task panicked, restarting", "panic", r)
		}
	}()
	s.statusFn()
}

func (s *Scheduler) runFlush(ctx context.Context) {
	if err := s.flushFn(); err != nil {
		s.logger.Error("flush task failed, restarting", "error", err)
		_ = s.restartLimiter.Wait(ctx)
	}
}
