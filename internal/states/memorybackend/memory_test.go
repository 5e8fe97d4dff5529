package memorybackend

import (
	"testing"

	"github.com/IshaanNene/scoregoat/internal/types"
)

func TestSetStatesDefaultsUnseenToNotCrawled(t *testing.T) {
	b := New()
	r, _ := types.NewRequest("https://example.com/")
	r.State = types.Crawled // garbage value SetStates should overwrite

	if err := b.SetStates([]*types.Request{r}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State != types.NotCrawled {
		t.Errorf("expected NotCrawled for unseen fingerprint, got %s", r.State)
	}
}

func TestUpdateCacheThenSetStatesRoundTrip(t *testing.T) {
	b := New()
	r, _ := types.NewRequest("https://example.com/")
	r.State = types.Queued

	if err := b.UpdateCache([]*types.Request{r}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := r.Clone()
	other.State = types.NotCrawled
	if err := b.SetStates([]*types.Request{other}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.State != types.Queued {
		t.Errorf("expected Queued loaded from cache, got %s", other.State)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := New()
	r, _ := types.NewRequest("https://example.com/")
	r.State = types.Crawled
	_ = b.UpdateCache([]*types.Request{r})

	snap := b.Snapshot()
	snap[r.Fingerprint] = types.Error

	if got, _ := b.Snapshot()[r.Fingerprint]; got != types.Crawled {
		t.Errorf("expected snapshot mutation not to affect backend, got %s", got)
	}
}
