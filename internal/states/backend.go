// Package states defines the external durable+cache store that backs
// StatesContext (spec.md §4.1): per-fingerprint crawl-progress labels,
// loaded into an in-process cache on Fetch, mutated by the strategy, and
// written back on UpdateCache. Flush persists the cache to durable storage
// and may run concurrently with ordinary Fetch/SetStates/UpdateCache calls
// from a separate periodic task — implementations are responsible for
// serializing that themselves (spec.md §4.1, §5).
package states

import "github.com/IshaanNene/scoregoat/internal/types"

// Backend is the interface StatesContext drives. All four operations may
// block on I/O.
type Backend interface {
	// Fetch loads cache entries for the given fingerprints from durable
	// storage, so that a subsequent SetStates sees their true state.
	Fetch(fingerprints []types.Fingerprint) error

	// SetStates populates each request's State field from the cache,
	// defaulting to NotCrawled for fingerprints never seen before.
	SetStates(requests []*types.Request) error

	// UpdateCache writes each request's (possibly mutated) State field
	// back into the cache.
	UpdateCache(requests []*types.Request) error

	// Flush persists the in-process cache to durable storage. May be
	// long-running; must be safe to run while no SetStates/UpdateCache
	// call is in progress, which the single-threaded cooperative
	// scheduler guarantees (spec.md §5).
	Flush() error

	// Close releases backend resources (connections, file handles).
	Close() error
}
