package worker

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/IshaanNene/scoregoat/internal/bus"
	"github.com/IshaanNene/scoregoat/internal/codec"
	"github.com/IshaanNene/scoregoat/internal/stats"
	"github.com/IshaanNene/scoregoat/internal/types"
)

// pollTimeout bounds each consumer poll within a batch collection
// (spec.md §4.3: "bounded wait (≤ 1 s per poll)").
const pollTimeout = time.Second

// BatchPipeline pulls up to a configured number of raw spider-log
// messages per tick, decodes and classifies them, pre-fetches their
// states in bulk, dispatches each to the strategy adapter, and
// releases state back (spec.md §4.3).
type BatchPipeline struct {
	consumer  bus.Consumer
	codec     codec.Codec
	states    *StatesContext
	adapter   *StrategyAdapter
	emitter   *ScoreEmitter
	counters  *stats.Counters
	logger    *slog.Logger
	batchSize int

	// OnUnknownMessage is invoked for events whose tag the codec
	// could decode but this pipeline doesn't recognize. Defaults to a
	// debug log (spec.md's supplemented collect_unknown_message hook).
	OnUnknownMessage func(e *types.Event)
}

// NewBatchPipeline builds a BatchPipeline.
func NewBatchPipeline(
	consumer bus.Consumer,
	c codec.Codec,
	sc *StatesContext,
	adapter *StrategyAdapter,
	emitter *ScoreEmitter,
	counters *stats.Counters,
	logger *slog.Logger,
	batchSize int,
) *BatchPipeline {
	bp := &BatchPipeline{
		consumer:  consumer,
		codec:     c,
		states:    sc,
		adapter:   adapter,
		emitter:   emitter,
		counters:  counters,
		logger:    logger.With("component", "batch_pipeline"),
		batchSize: batchSize,
	}
	bp.OnUnknownMessage = bp.defaultOnUnknownMessage
	return bp
}

// CollectBatch pulls up to batchSize raw messages with a bounded wait,
// decodes and classifies each, and enrolls every referenced
// fingerprint into the states context so the subsequent bulk fetch
// covers the whole batch. Returns the decoded events plus the total
// number of messages consumed (including ones that failed to decode,
// which still count per spec.md §4.3 step 1/4).
func (bp *BatchPipeline) CollectBatch(ctx context.Context) (events []*types.Event, consumed int, err error) {
	messages, err := bp.consumer.GetMessages(ctx, bp.batchSize, pollTimeout)
	if err != nil {
		return nil, 0, &types.BusError{Op: "get_messages", Err: err}
	}

	for _, msg := range messages {
		consumed++

		event, decodeErr := bp.codec.Decode(msg.Payload)
		if decodeErr != nil {
			bp.counters.RecordDecodeError()
			bp.logger.Error("decode error, skipping message",
				"error", decodeErr,
				"hex", hex.EncodeToString(msg.Payload))
			continue
		}

		bp.classifySafely(event)
		events = append(events, event)
	}
	return events, consumed, nil
}

// classifySafely invokes classify, catching any panic so one malformed
// event cannot abort batch collection for the whole batch — still
// counted as consumed, logged and continued, per spec.md §4.3 step 4.
func (bp *BatchPipeline) classifySafely(e *types.Event) {
	defer func() {
		if r := recover(); r != nil {
			bp.logger.Error("classify panicked", "tag", e.Tag, "panic", r)
		}
	}()
	bp.classify(e)
}

// classify enrolls an event's fingerprints into the states context for
// the pending bulk fetch. offset events are bookkeeping and ignored;
// unknown tags invoke OnUnknownMessage.
func (bp *BatchPipeline) classify(e *types.Event) {
	switch e.Tag {
	case types.EventOffset:
		return
	case types.EventAddSeeds, types.EventPageCrawled, types.EventLinksExtracted, types.EventRequestError:
		bp.states.ToFetch(eventRequests(e)...)
	default:
		bp.OnUnknownMessage(e)
	}
}

// eventRequests returns every *types.Request an event references.
// ToFetch records only their fingerprints; the per-event SetStates call
// in the strategy adapter is what fills each request's State field.
func eventRequests(e *types.Event) []*types.Request {
	switch e.Tag {
	case types.EventAddSeeds:
		return e.Seeds
	case types.EventPageCrawled:
		if e.Response == nil {
			return nil
		}
		return []*types.Request{e.Response.Request}
	case types.EventLinksExtracted:
		out := make([]*types.Request, 0, len(e.Links)+1)
		if e.Request != nil {
			out = append(out, e.Request)
		}
		out = append(out, e.Links...)
		return out
	case types.EventRequestError:
		if e.ErrorRequest == nil {
			return nil
		}
		return []*types.Request{e.ErrorRequest}
	default:
		return nil
	}
}

func (bp *BatchPipeline) defaultOnUnknownMessage(e *types.Event) {
	bp.logger.Debug("unknown message tag", "raw_len", len(e.Raw))
}

// Work runs one full batch: collect, bulk-fetch, dispatch, flush the
// emitter, release mutated state back, check for strategy completion,
// and update stats (spec.md §4.3 steps 1-6).
func (bp *BatchPipeline) Work(ctx context.Context) (finished bool, err error) {
	events, consumed, err := bp.CollectBatch(ctx)
	if err != nil {
		return false, err
	}

	if err := bp.states.Fetch(); err != nil {
		return false, err
	}

	for _, e := range events {
		bp.dispatchSafely(ctx, e)
	}

	if err := bp.emitter.Flush(); err != nil {
		return false, err
	}

	if err := bp.states.Release(); err != nil {
		return false, err
	}

	finished = bp.adapter.Strategy().Finished()

	bp.counters.AddConsumed(int64(consumed))
	bp.counters.RecordRun(int64(consumed))

	return finished, nil
}

// dispatchSafely invokes the strategy adapter for one event, catching
// any panic from strategy code so one bad event cannot halt the batch
// (spec.md §4.4: "per-event exceptions ... caught, logged, swallowed").
func (bp *BatchPipeline) dispatchSafely(ctx context.Context, e *types.Event) {
	defer func() {
		if r := recover(); r != nil {
			bp.logger.Error("strategy handler panicked", "tag", e.Tag, "panic", r)
		}
	}()
	if err := bp.adapter.Dispatch(ctx, e); err != nil {
		bp.logger.Error("strategy handler error", "tag", e.Tag, "error", err)
	}
}
