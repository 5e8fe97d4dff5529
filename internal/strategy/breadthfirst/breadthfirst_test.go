package breadthfirst

import (
	"io"
	"log/slog"
	"testing"

	"github.com/IshaanNene/scoregoat/internal/bus/inmemory"
	"github.com/IshaanNene/scoregoat/internal/codec/jsoncodec"
	"github.com/IshaanNene/scoregoat/internal/types"
	"github.com/IshaanNene/scoregoat/internal/worker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEmitter(t *testing.T) (*worker.ScoreEmitter, *inmemory.Bus) {
	t.Helper()
	b := inmemory.New(1)
	producer, err := b.Producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return worker.NewScoreEmitter(jsoncodec.New(), producer), b
}

func TestAddSeedsSchedulesAtScoreOne(t *testing.T) {
	emitter, b := newTestEmitter(t)
	s := New(emitter, 0, 0, discardLogger())

	seed, _ := types.NewRequest("https://example.com/")
	if err := s.AddSeeds([]*types.Request{seed}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seed.State != types.Queued {
		t.Errorf("expected seed state Queued, got %s", seed.State)
	}

	msgs := b.DrainScoringLog()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 emitted score, got %d", len(msgs))
	}
	e, err := jsoncodec.New().Decode(msgs[0].Payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Score != 1.0 || e.ScoreFingerprint != seed.Fingerprint {
		t.Errorf("unexpected emitted event: %+v", e)
	}
}

func TestLinksExtractedRespectsMaxDepth(t *testing.T) {
	emitter, b := newTestEmitter(t)
	s := New(emitter, 2, 0, discardLogger())

	parent, _ := types.NewRequest("https://example.com/")
	within, _ := types.NewRequest("https://example.com/a")
	within.Depth = 2
	beyond, _ := types.NewRequest("https://example.com/b")
	beyond.Depth = 3

	if err := s.LinksExtracted(parent, []*types.Request{within, beyond}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := b.DrainScoringLog()
	if len(msgs) != 1 {
		t.Fatalf("expected only the within-depth link to be scored, got %d", len(msgs))
	}
	if beyond.State != types.NotCrawled {
		t.Errorf("expected over-depth link left NotCrawled, got %s", beyond.State)
	}
	if within.State != types.Queued {
		t.Errorf("expected within-depth link Queued, got %s", within.State)
	}
}

func TestFinishedAfterMaxPages(t *testing.T) {
	emitter, _ := newTestEmitter(t)
	s := New(emitter, 0, 2, discardLogger())

	if s.Finished() {
		t.Fatal("expected not finished before any pages crawled")
	}

	req1, _ := types.NewRequest("https://example.com/1")
	req2, _ := types.NewRequest("https://example.com/2")
	_ = s.PageCrawled(types.NewResponse(req1, 200, nil, req1.URL, 0))
	if s.Finished() {
		t.Fatal("expected not finished after 1 of 2 pages")
	}
	_ = s.PageCrawled(types.NewResponse(req2, 200, nil, req2.URL, 0))
	if !s.Finished() {
		t.Fatal("expected finished after max pages reached")
	}
}

func TestPageErrorMarksErrorState(t *testing.T) {
	emitter, _ := newTestEmitter(t)
	s := New(emitter, 0, 0, discardLogger())

	req, _ := types.NewRequest("https://example.com/")
	if err := s.PageError(req, "timeout"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.State != types.Error {
		t.Errorf("expected state Error, got %s", req.State)
	}
}
