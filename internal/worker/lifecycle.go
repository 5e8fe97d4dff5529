package worker

import (
	"fmt"
	"sync/atomic"
)

// Phase is the worker's lifecycle state (spec.md §4.7).
type Phase int32

const (
	PhaseInit Phase = iota
	PhaseRunning
	PhaseDraining
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Lifecycle is the worker's Init -> Running -> Draining -> Stopped
// state machine. Grounded on the teacher's internal/engine/engine.go
// State enum + atomic.Int32 CompareAndSwap transitions, narrowed from
// its five states (idle/running/paused/stopping/stopped) to spec.md's
// four — this worker has no pause/resume.
type Lifecycle struct {
	phase atomic.Int32
}

// NewLifecycle returns a Lifecycle in PhaseInit.
func NewLifecycle() *Lifecycle {
	l := &Lifecycle{}
	l.phase.Store(int32(PhaseInit))
	return l
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() Phase {
	return Phase(l.phase.Load())
}

// Start transitions Init -> Running. Returns an error if not in Init.
func (l *Lifecycle) Start() error {
	if !l.phase.CompareAndSwap(int32(PhaseInit), int32(PhaseRunning)) {
		return fmt.Errorf("lifecycle: cannot start from phase %s", Phase(l.phase.Load()))
	}
	return nil
}

// BeginDrain transitions Running -> Draining. Idempotent: calling it
// again once Draining or Stopped has begun is a silent no-op, per
// spec.md §4.7's idempotence requirement (drain may be triggered by
// finish detection, a shutdown signal, or a fatal error, and any of
// those may race).
func (l *Lifecycle) BeginDrain() (started bool) {
	return l.phase.CompareAndSwap(int32(PhaseRunning), int32(PhaseDraining))
}

// MarkStopped transitions Draining -> Stopped. Idempotent.
func (l *Lifecycle) MarkStopped() (stopped bool) {
	return l.phase.CompareAndSwap(int32(PhaseDraining), int32(PhaseStopped))
}

// IsDraining reports whether the worker is in or past the draining phase.
func (l *Lifecycle) IsDraining() bool {
	p := l.Phase()
	return p == PhaseDraining || p == PhaseStopped
}
