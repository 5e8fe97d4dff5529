package worker

import (
	"context"
	"testing"

	"github.com/IshaanNene/scoregoat/internal/bus/inmemory"
	"github.com/IshaanNene/scoregoat/internal/codec/jsoncodec"
	"github.com/IshaanNene/scoregoat/internal/states/memorybackend"
	"github.com/IshaanNene/scoregoat/internal/stats"
	"github.com/IshaanNene/scoregoat/internal/types"
)

// fakeStrategy records every call it receives, for pipeline-level
// assertions without depending on a concrete reference strategy.
type fakeStrategy struct {
	seeds     []*types.Request
	crawled   []*types.Response
	extracted map[*types.Request][]*types.Request
	errors    []*types.Request
	closed    bool
	finished  bool
}

func newFakeStrategy() *fakeStrategy {
	return &fakeStrategy{extracted: make(map[*types.Request][]*types.Request)}
}

func (f *fakeStrategy) AddSeeds(seeds []*types.Request) error {
	f.seeds = append(f.seeds, seeds...)
	for _, s := range seeds {
		s.State = types.Queued
	}
	return nil
}

func (f *fakeStrategy) PageCrawled(resp *types.Response) error {
	f.crawled = append(f.crawled, resp)
	resp.Request.State = types.Crawled
	return nil
}

func (f *fakeStrategy) LinksExtracted(req *types.Request, links []*types.Request) error {
	f.extracted[req] = links
	for _, l := range links {
		l.State = types.Queued
	}
	return nil
}

func (f *fakeStrategy) PageError(req *types.Request, errMsg string) error {
	f.errors = append(f.errors, req)
	req.State = types.Error
	return nil
}

func (f *fakeStrategy) Finished() bool { return f.finished }
func (f *fakeStrategy) Close() error   { f.closed = true; return nil }

func buildTestPipeline(t *testing.T, jobID int64) (*BatchPipeline, *inmemory.Bus, *fakeStrategy, *memorybackend.Backend) {
	t.Helper()
	b := inmemory.New(1)
	codec := jsoncodec.New()
	backend := memorybackend.New()
	sc := NewStatesContext(backend)
	strat := newFakeStrategy()
	counters := stats.New()
	adapter := NewStrategyAdapter(strat, sc, counters, jobID)

	producer, err := b.Producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	emitter := NewScoreEmitter(codec, producer)

	consumer, err := b.Consumer(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bp := NewBatchPipeline(consumer, codec, sc, adapter, emitter, counters, discardLogger(), 64)
	return bp, b, strat, backend
}

func TestBatchPipelineDispatchesAddSeeds(t *testing.T) {
	bp, b, strat, backend := buildTestPipeline(t, 1)

	codec := jsoncodec.New()
	seed, _ := types.NewRequest("https://example.com/")
	payload, _ := codec.Encode(&types.Event{Tag: types.EventAddSeeds, Seeds: []*types.Request{seed}})
	if err := b.PublishSpiderLog(0, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished, err := bp.Work(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finished {
		t.Error("expected not finished")
	}
	if len(strat.seeds) != 1 || strat.seeds[0].URL != seed.URL {
		t.Fatalf("expected strategy to receive the seed, got %+v", strat.seeds)
	}

	snap := backend.Snapshot()
	if snap[seed.Fingerprint] != types.Queued {
		t.Errorf("expected seed state written back as Queued, got %s", snap[seed.Fingerprint])
	}
}

func TestBatchPipelineFiltersStaleJobID(t *testing.T) {
	bp, b, strat, _ := buildTestPipeline(t, 5)

	codec := jsoncodec.New()
	req, _ := types.NewRequest("https://example.com/")
	req.SetJobID(999) // stale: worker's job id is 5
	resp := types.NewResponse(req, 200, []byte("body"), req.URL, 0)
	payload, _ := codec.Encode(&types.Event{Tag: types.EventPageCrawled, Response: resp})
	if err := b.PublishSpiderLog(0, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := bp.Work(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(strat.crawled) != 0 {
		t.Errorf("expected stale page_crawled event to be filtered, got %d dispatched", len(strat.crawled))
	}
}

func TestBatchPipelineFinishedPropagatesFromStrategy(t *testing.T) {
	bp, _, strat, _ := buildTestPipeline(t, 1)
	strat.finished = true

	finished, err := bp.Work(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !finished {
		t.Error("expected Work to report finished once strategy.Finished() is true")
	}
}

func TestBatchPipelineDecodeErrorsAreSkippedNotFatal(t *testing.T) {
	bp, b, strat, _ := buildTestPipeline(t, 1)

	if err := b.PublishSpiderLog(0, []byte("not valid json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	codec := jsoncodec.New()
	seed, _ := types.NewRequest("https://example.com/")
	payload, _ := codec.Encode(&types.Event{Tag: types.EventAddSeeds, Seeds: []*types.Request{seed}})
	if err := b.PublishSpiderLog(0, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished, err := bp.Work(context.Background())
	if err != nil {
		t.Fatalf("expected decode errors to be swallowed, got: %v", err)
	}
	if finished {
		t.Error("expected not finished")
	}
	if len(strat.seeds) != 1 {
		t.Errorf("expected the valid event to still be dispatched, got %d seeds", len(strat.seeds))
	}
}
