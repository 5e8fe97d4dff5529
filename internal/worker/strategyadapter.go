package worker

import (
	"context"
	"fmt"

	"github.com/IshaanNene/scoregoat/internal/stats"
	"github.com/IshaanNene/scoregoat/internal/strategy"
	"github.com/IshaanNene/scoregoat/internal/types"
)

// StrategyAdapter dispatches decoded events to the user strategy's
// handlers, applying jid staleness filtering first (spec.md §4.4).
type StrategyAdapter struct {
	strategy strategy.Strategy
	states   *StatesContext
	counters *stats.Counters
	jobID    int64

	// OnUnknownMessage is invoked for tags this adapter doesn't
	// recognize (spec.md's supplemented on_unknown_message hook).
	OnUnknownMessage func(e *types.Event)
}

// NewStrategyAdapter builds a StrategyAdapter bound to the worker's
// current job id.
func NewStrategyAdapter(s strategy.Strategy, sc *StatesContext, counters *stats.Counters, jobID int64) *StrategyAdapter {
	sa := &StrategyAdapter{strategy: s, states: sc, counters: counters, jobID: jobID}
	sa.OnUnknownMessage = func(e *types.Event) {}
	return sa
}

// Strategy returns the wrapped strategy, e.g. for Finished() checks.
func (sa *StrategyAdapter) Strategy() strategy.Strategy {
	return sa.strategy
}

// Dispatch routes one decoded event to the appropriate strategy
// handler. Each case performs the full load-mutate-store triplet
// (set_states, handler, update_cache) itself, in addition to the
// batch-level fetch/release the pipeline already ran — this
// redundancy is deliberate (spec.md §4.4, §9): the contract is that a
// handler may consult state mid-invocation, so it must see a freshly
// loaded state regardless of what the batch already staged.
func (sa *StrategyAdapter) Dispatch(ctx context.Context, e *types.Event) error {
	switch e.Tag {
	case types.EventAddSeeds:
		return sa.dispatchAddSeeds(e)
	case types.EventPageCrawled:
		return sa.dispatchPageCrawled(e)
	case types.EventLinksExtracted:
		return sa.dispatchLinksExtracted(e)
	case types.EventRequestError:
		return sa.dispatchRequestError(e)
	case types.EventOffset:
		return nil
	default:
		sa.OnUnknownMessage(e)
		return nil
	}
}

func (sa *StrategyAdapter) dispatchAddSeeds(e *types.Event) error {
	// add_seeds is never jid-filtered; seeds are stamped with the
	// worker's current job id instead (spec.md §3, §4.4).
	for _, seed := range e.Seeds {
		seed.SetJobID(sa.jobID)
	}

	if err := sa.states.SetStates(e.Seeds...); err != nil {
		return err
	}
	if err := sa.strategy.AddSeeds(e.Seeds); err != nil {
		return fmt.Errorf("strategy.add_seeds: %w", err)
	}
	if err := sa.states.backend.UpdateCache(e.Seeds); err != nil {
		return &types.BackendError{Op: "update_cache", Err: err}
	}
	sa.counters.RecordTag("add_seeds")
	return nil
}

func (sa *StrategyAdapter) dispatchPageCrawled(e *types.Event) error {
	if e.Response == nil || e.Response.Request == nil {
		return nil
	}
	req := e.Response.Request
	if sa.isStale(req) {
		return nil
	}

	if err := sa.states.SetStates(req); err != nil {
		return err
	}
	if err := sa.strategy.PageCrawled(e.Response); err != nil {
		return fmt.Errorf("strategy.page_crawled: %w", err)
	}
	if err := sa.states.backend.UpdateCache([]*types.Request{req}); err != nil {
		return &types.BackendError{Op: "update_cache", Err: err}
	}
	sa.counters.RecordTag("page_crawled")
	return nil
}

func (sa *StrategyAdapter) dispatchLinksExtracted(e *types.Event) error {
	if e.Request == nil {
		return nil
	}
	if sa.isStale(e.Request) {
		return nil
	}

	if err := sa.states.SetStates(e.Links...); err != nil {
		return err
	}
	if err := sa.strategy.LinksExtracted(e.Request, e.Links); err != nil {
		return fmt.Errorf("strategy.links_extracted: %w", err)
	}
	if err := sa.states.backend.UpdateCache(e.Links); err != nil {
		return &types.BackendError{Op: "update_cache", Err: err}
	}
	sa.counters.RecordTag("links_extracted")
	return nil
}

func (sa *StrategyAdapter) dispatchRequestError(e *types.Event) error {
	if e.ErrorRequest == nil {
		return nil
	}
	if sa.isStale(e.ErrorRequest) {
		return nil
	}

	if err := sa.states.SetStates(e.ErrorRequest); err != nil {
		return err
	}
	if err := sa.strategy.PageError(e.ErrorRequest, e.Error); err != nil {
		return fmt.Errorf("strategy.page_error: %w", err)
	}
	if err := sa.states.backend.UpdateCache([]*types.Request{e.ErrorRequest}); err != nil {
		return &types.BackendError{Op: "update_cache", Err: err}
	}
	sa.counters.RecordTag("request_error")
	return nil
}

// isStale reports whether req carries a jid other than the worker's
// current job id (spec.md §3, §8 property 3). add_seeds is never
// checked; every other tag is. A request with no jid at all is also
// stale: the Python ground truth drops any message whose meta lacks
// b'jid' outright rather than treating it as current.
func (sa *StrategyAdapter) isStale(req *types.Request) bool {
	jid, ok := req.JobID()
	if !ok {
		return true
	}
	return jid != sa.jobID
}
