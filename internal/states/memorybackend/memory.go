// Package memorybackend is an in-process, cache-only states.Backend used by
// tests and the bundled demo binary. It has no durable tier: Flush is a
// no-op, since the cache map already is the entire store.
package memorybackend

import (
	"sync"

	"github.com/IshaanNene/scoregoat/internal/types"
)

// Backend is a mutex-guarded map from fingerprint to state.
type Backend struct {
	mu    sync.Mutex
	cache map[types.Fingerprint]types.State
}

// New creates an empty Backend.
func New() *Backend {
	return &Backend{cache: make(map[types.Fingerprint]types.State)}
}

// Fetch is a no-op: the whole cache already lives in process memory, so
// there is nothing to pull from a separate durable tier.
func (b *Backend) Fetch(fingerprints []types.Fingerprint) error {
	return nil
}

// SetStates copies each request's cached state (NotCrawled if unseen).
func (b *Backend) SetStates(requests []*types.Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range requests {
		if r == nil {
			continue
		}
		r.State = b.cache[r.Fingerprint]
	}
	return nil
}

// UpdateCache writes each request's current state back into the cache.
func (b *Backend) UpdateCache(requests []*types.Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range requests {
		if r == nil {
			continue
		}
		b.cache[r.Fingerprint] = r.State
	}
	return nil
}

// Flush is a no-op for the memory backend.
func (b *Backend) Flush() error { return nil }

// Close is a no-op for the memory backend.
func (b *Backend) Close() error { return nil }

// Snapshot returns a copy of the cache, for tests.
func (b *Backend) Snapshot() map[types.Fingerprint]types.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[types.Fingerprint]types.State, len(b.cache))
	for k, v := range b.cache {
		out[k] = v
	}
	return out
}
