package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/IshaanNene/scoregoat/internal/bus"
	"github.com/IshaanNene/scoregoat/internal/codec"
	"github.com/IshaanNene/scoregoat/internal/states"
	"github.com/IshaanNene/scoregoat/internal/stats"
	"github.com/IshaanNene/scoregoat/internal/strategy"
)

// Worker is the top-level strategy worker: it wires the states
// context, score emitter, batch pipeline, strategy adapter, cooperative
// scheduler, and lifecycle state machine together and drives the
// graceful-shutdown sequence (spec.md §4.7).
type Worker struct {
	lifecycle *Lifecycle
	scheduler *Scheduler
	pipeline  *BatchPipeline
	adapter   *StrategyAdapter
	states    *StatesContext
	strategy  strategy.Strategy

	consumer bus.Consumer
	producer bus.Producer
	backend  states.Backend

	counters *stats.Counters
	sinks    []stats.Sink
	tags     map[string]string

	partitionID int
	logger      *slog.Logger

	stopOnce sync.Once
}

// Config bundles the collaborators a Worker needs. All fields are
// required except Sinks.
type Config struct {
	Consumer      bus.Consumer
	Producer      bus.Producer
	Codec         codec.Codec
	Backend       states.Backend
	Strategy      strategy.Strategy
	JobID         int64
	PartitionID   int
	BatchSize     int
	FlushInterval time.Duration
	Sinks         []stats.Sink
	Logger        *slog.Logger
}

// New wires a Worker from its collaborators.
func New(cfg Config) *Worker {
	logger := cfg.Logger.With("component", "worker", "partition_id", cfg.PartitionID)
	counters := stats.New()
	sc := NewStatesContext(cfg.Backend)
	adapter := NewStrategyAdapter(cfg.Strategy, sc, counters, cfg.JobID)
	emitter := NewScoreEmitter(cfg.Codec, cfg.Producer)
	pipeline := NewBatchPipeline(cfg.Consumer, cfg.Codec, sc, adapter, emitter, counters, logger, cfg.BatchSize)

	w := &Worker{
		lifecycle:   NewLifecycle(),
		pipeline:    pipeline,
		adapter:     adapter,
		states:      sc,
		strategy:    cfg.Strategy,
		consumer:    cfg.Consumer,
		producer:    cfg.Producer,
		backend:     cfg.Backend,
		counters:    counters,
		sinks:       cfg.Sinks,
		tags:        map[string]string{"source": "sw", "partition_id": fmt.Sprintf("%d", cfg.PartitionID)},
		partitionID: cfg.PartitionID,
		logger:      logger,
	}
	w.scheduler = NewScheduler(w.work, w.reportStatus, w.states.Flush, cfg.FlushInterval, logger)
	return w
}

// Run starts the worker and blocks until it has fully drained,
// following Init -> Running -> Draining -> Stopped (spec.md §4.7).
// It installs its own SIGINT/SIGTERM and diagnostic-signal handlers.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.lifecycle.Start(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	diagCh := make(chan os.Signal, 1)
	signal.Notify(diagCh, syscall.SIGUSR1)
	defer signal.Stop(diagCh)

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case <-sigCh:
				w.logger.Info("shutdown signal received, draining")
				w.beginDrain()
				cancel()
				return
			case <-diagCh:
				w.dumpStack()
			}
		}
	}()

	w.scheduler.Run(runCtx)
	w.beginDrain()
	return w.drain()
}

// work is the scheduler's work-task callback: run one batch, and if
// the strategy reports completion, begin draining (spec.md §4.3 step
// 5, §8 property 7).
func (w *Worker) work(ctx context.Context) (finished bool, err error) {
	finished, err = w.pipeline.Work(ctx)
	if err != nil {
		return false, err
	}
	if finished {
		w.logger.Info("strategy reports finished, draining")
		return true, nil
	}
	return false, nil
}

// reportStatus is the scheduler's status-task callback: log all
// counters and emit them to every configured sink (spec.md §4.6).
func (w *Worker) reportStatus() {
	snapshot := w.counters.Snapshot()
	w.logger.Info("status", "counters", snapshot)
	for _, sink := range w.sinks {
		sink.Emit(w.tags, snapshot)
	}
}

// beginDrain transitions Running -> Draining. Idempotent: a finish
// condition, a shutdown signal, and a fatal error can all race to call
// it (spec.md §4.7, §8 property 5).
func (w *Worker) beginDrain() {
	w.lifecycle.BeginDrain()
	w.scheduler.Stop()
}

// drain runs the strict, idempotent shutdown sequence (spec.md §4.7):
// stop tasks, final flush, close strategy, stop manager (here: the
// states context, which owns no separate manager type), close
// producer then consumer, stop the scheduler runtime.
func (w *Worker) drain() error {
	var firstErr error
	w.stopOnce.Do(func() {
		w.scheduler.Stop()
		w.scheduler.Wait()

		if err := w.states.Flush(); err != nil {
			w.logger.Error("final flush failed", "error", err)
			firstErr = err
		}
		if err := w.strategy.Close(); err != nil {
			w.logger.Error("strategy close failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := w.backend.Close(); err != nil {
			w.logger.Error("states backend close failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := w.producer.Close(); err != nil {
			w.logger.Error("producer close failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := w.consumer.Close(); err != nil {
			w.logger.Error("consumer close failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		w.lifecycle.MarkStopped()
		w.logger.Info("worker stopped", "counters", w.counters.Snapshot())
	})
	return firstErr
}

// dumpStack logs the stacks of all running goroutines at CRITICAL
// (mapped to slog.LevelError+4, above slog's highest built-in level) without disturbing
// the lifecycle state machine — the diagnostic signal analogue of
// SIGUSR1 (spec.md §6.4, §9 supplemented feature).
func (w *Worker) dumpStack() {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	w.logger.Log(context.Background(), slog.LevelError+4, "diagnostic stack dump", "stack", string(buf[:n]))
}
