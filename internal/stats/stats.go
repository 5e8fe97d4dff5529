// Package stats tracks the strategy worker's consumption counters
// (spec.md §4.6) and exposes them through pluggable StatsSink
// implementations. Grounded on the teacher's internal/observability
// package: atomic counters updated inline by the hot path, snapshotted
// and exported on a separate cadence.
package stats

import (
	"sync/atomic"
	"time"
)

// Counters holds the worker's running consumption totals. Updated from
// the single status/work task goroutine timeline (spec.md §5), so
// plain atomics are sufficient without a surrounding mutex.
type Counters struct {
	ConsumedSinceStart     atomic.Int64
	ConsumedAddSeeds       atomic.Int64
	ConsumedPageCrawled    atomic.Int64
	ConsumedLinksExtracted atomic.Int64
	ConsumedRequestError   atomic.Int64
	DecodeErrors           atomic.Int64

	lastConsumed       atomic.Int64 // message count consumed by the most recent work run
	lastConsumptionRun atomic.Value // string: human-readable timestamp of the most recent work run
}

// New returns a zeroed Counters.
func New() *Counters { return &Counters{} }

// AddConsumed bumps the batch-level total by n (spec.md §4.3 step 6:
// every consumed message counts, including ones that failed to
// decode).
func (c *Counters) AddConsumed(n int64) {
	c.ConsumedSinceStart.Add(n)
}

// RecordTag bumps the per-tag counter for one dispatched event
// (spec.md §4.4 — incremented only for events the strategy adapter
// actually dispatches, i.e. not for jid-stale events).
func (c *Counters) RecordTag(tag string) {
	switch tag {
	case "add_seeds":
		c.ConsumedAddSeeds.Add(1)
	case "page_crawled":
		c.ConsumedPageCrawled.Add(1)
	case "links_extracted":
		c.ConsumedLinksExtracted.Add(1)
	case "request_error":
		c.ConsumedRequestError.Add(1)
	}
}

// RecordRun stamps the message count consumed by one work tick and the
// human-readable time it ran, mirroring the Python worker's
// self.stats['last_consumed'] = consumed and
// self.stats['last_consumption_run'] = asctime().
func (c *Counters) RecordRun(consumed int64) {
	c.lastConsumed.Store(consumed)
	c.lastConsumptionRun.Store(time.Now().Format(time.ANSIC))
}

// RecordDecodeError bumps the decode-error counter (spec.md §4.3, §7:
// never fatal, but tracked).
func (c *Counters) RecordDecodeError() {
	c.DecodeErrors.Add(1)
}

// LastConsumed returns the number of messages consumed by the most
// recent work run, or 0 if none yet.
func (c *Counters) LastConsumed() int64 {
	return c.lastConsumed.Load()
}

// LastConsumptionRun returns the human-readable timestamp of the most
// recent work-task run, or "" if none yet.
func (c *Counters) LastConsumptionRun() string {
	s, _ := c.lastConsumptionRun.Load().(string)
	return s
}

// Snapshot returns a point-in-time copy of all named counters, keyed
// the way spec.md §4.6 names them, for StatsSink implementations.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"consumed_since_start":     c.ConsumedSinceStart.Load(),
		"consumed_add_seeds":       c.ConsumedAddSeeds.Load(),
		"consumed_page_crawled":    c.ConsumedPageCrawled.Load(),
		"consumed_links_extracted": c.ConsumedLinksExtracted.Load(),
		"consumed_request_error":   c.ConsumedRequestError.Load(),
		"decode_errors":            c.DecodeErrors.Load(),
		"last_consumed":            c.lastConsumed.Load(),
	}
}

// Sink receives periodic counter snapshots tagged with worker
// identity (source "sw", partition_id). Implementations must not block
// the calling status task for long; slow sinks should buffer
// internally.
type Sink interface {
	Emit(tags map[string]string, counters map[string]int64)
}
