// Package worker is the strategy worker's core engine: the StatesContext
// coherence protocol, the score emitter, the batch pipeline, the
// strategy adapter, the cooperative task scheduler, and the lifecycle
// state machine. Grounded on the teacher's internal/engine package,
// whose engine.go ties an equivalent set of collaborators (frontier,
// fetcher, parser, storage) together behind one Engine type with an
// atomic state machine and a ticker-driven background loop.
package worker

import (
	"github.com/IshaanNene/scoregoat/internal/states"
	"github.com/IshaanNene/scoregoat/internal/types"
)

// StatesContext is the per-batch scratch area for the state cache
// coherence protocol (spec.md §3, §4.1): fingerprints accumulate in
// pendingFetch until fetch() loads them, and mutated requests
// accumulate in touched until release() writes them back. It exists
// for the worker's whole lifetime; its contents reset every batch.
type StatesContext struct {
	backend states.Backend

	pendingFetch map[types.Fingerprint]struct{}
	touched      []*types.Request
}

// NewStatesContext wraps a states.Backend in a StatesContext.
func NewStatesContext(backend states.Backend) *StatesContext {
	return &StatesContext{
		backend:      backend,
		pendingFetch: make(map[types.Fingerprint]struct{}),
	}
}

// ToFetch enrolls one or more requests' fingerprints into the pending
// fetch set for the current batch. Always pass a slice at call sites
// (spec.md §9: "erase the dynamic single-or-iterable branch").
func (sc *StatesContext) ToFetch(requests ...*types.Request) {
	for _, r := range requests {
		if r == nil {
			continue
		}
		sc.pendingFetch[r.Fingerprint] = struct{}{}
	}
}

// Fetch asks the backend to load cache entries for every fingerprint
// accumulated via ToFetch since the last Fetch, then clears
// pendingFetch. May block on backend I/O.
func (sc *StatesContext) Fetch() error {
	if len(sc.pendingFetch) == 0 {
		return nil
	}
	fingerprints := make([]types.Fingerprint, 0, len(sc.pendingFetch))
	for fp := range sc.pendingFetch {
		fingerprints = append(fingerprints, fp)
	}
	sc.pendingFetch = make(map[types.Fingerprint]struct{})

	if err := sc.backend.Fetch(fingerprints); err != nil {
		return &types.BackendError{Op: "fetch", Err: err}
	}
	return nil
}

// SetStates populates each request's State field from the cache. Part
// of the per-event load-mutate-store triplet the strategy adapter
// calls directly (spec.md §4.4, §9) in addition to the batch-level
// Fetch/Release above — the redundancy is intentional, see
// internal/worker/strategyadapter.go.
func (sc *StatesContext) SetStates(requests ...*types.Request) error {
	if err := sc.backend.SetStates(requests); err != nil {
		return &types.BackendError{Op: "set_states", Err: err}
	}
	return nil
}

// RefreshAndKeep is shorthand for ToFetch + Fetch + SetStates,
// followed by appending rs to touched for the next Release.
func (sc *StatesContext) RefreshAndKeep(requests ...*types.Request) error {
	sc.ToFetch(requests...)
	if err := sc.Fetch(); err != nil {
		return err
	}
	if err := sc.SetStates(requests...); err != nil {
		return err
	}
	sc.touched = append(sc.touched, requests...)
	return nil
}

// Keep appends requests to touched without fetching, for callers that
// already hold current state (e.g. the per-event triplet in
// strategyadapter.go, which calls SetStates/UpdateCache directly).
func (sc *StatesContext) Keep(requests ...*types.Request) {
	sc.touched = append(sc.touched, requests...)
}

// Release writes back every touched request's (possibly mutated)
// State via the backend, then clears touched.
func (sc *StatesContext) Release() error {
	if len(sc.touched) == 0 {
		return nil
	}
	touched := sc.touched
	sc.touched = nil

	if err := sc.backend.UpdateCache(touched); err != nil {
		return &types.BackendError{Op: "update_cache", Err: err}
	}
	return nil
}

// Flush persists the cache to durable storage. Called from the flush
// task, a separate periodic task from the one that runs batches
// (spec.md §4.1) — safe because the cooperative scheduler guarantees
// no other task handler runs concurrently (spec.md §5).
func (sc *StatesContext) Flush() error {
	if err := sc.backend.Flush(); err != nil {
		return &types.BackendError{Op: "flush", Err: err}
	}
	return nil
}
