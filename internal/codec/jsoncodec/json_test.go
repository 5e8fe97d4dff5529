package jsoncodec

import (
	"errors"
	"testing"

	"github.com/IshaanNene/scoregoat/internal/types"
)

func TestEncodeDecodeAddSeeds(t *testing.T) {
	c := New()
	seed, _ := types.NewRequest("https://example.com/")
	e := &types.Event{Tag: types.EventAddSeeds, Seeds: []*types.Request{seed}}

	data, err := c.Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tag != types.EventAddSeeds || len(got.Seeds) != 1 || got.Seeds[0].URL != seed.URL {
		t.Fatalf("unexpected round-trip result: %+v", got)
	}
}

func TestEncodeDecodePageCrawled(t *testing.T) {
	c := New()
	req, _ := types.NewRequest("https://example.com/")
	resp := types.NewResponse(req, 200, []byte("<html></html>"), "https://example.com/", 0)
	e := &types.Event{Tag: types.EventPageCrawled, Response: resp}

	data, err := c.Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Response == nil || got.Response.StatusCode != 200 || string(got.Response.Body) != "<html></html>" {
		t.Fatalf("unexpected decoded response: %+v", got.Response)
	}
}

func TestEncodeDecodeUpdateScore(t *testing.T) {
	c := New()
	e := &types.Event{
		Tag:              types.EventUpdateScore,
		ScoreFingerprint: types.Fingerprint("abc123"),
		Score:            0.75,
		Schedule:         true,
	}

	data, err := c.Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ScoreFingerprint != e.ScoreFingerprint || got.Score != e.Score || !got.Schedule {
		t.Fatalf("unexpected decoded update_score event: %+v", got)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	c := New()
	_, err := c.Decode([]byte("not json"))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	var decodeErr *types.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected *types.DecodeError, got %T", err)
	}
}

func TestDecodeMissingTag(t *testing.T) {
	c := New()
	_, err := c.Decode([]byte(`{}`))
	if err == nil {
		t.Fatal("expected error for missing tag")
	}
}
