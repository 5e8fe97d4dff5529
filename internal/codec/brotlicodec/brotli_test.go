package brotlicodec

import (
	"strings"
	"testing"

	"github.com/IshaanNene/scoregoat/internal/codec/jsoncodec"
	"github.com/IshaanNene/scoregoat/internal/types"
)

func TestRoundTripBelowThresholdUncompressed(t *testing.T) {
	c := New(jsoncodec.New(), 4096)
	seed, _ := types.NewRequest("https://example.com/")
	e := &types.Event{Tag: types.EventAddSeeds, Seeds: []*types.Request{seed}}

	data, err := c.Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[0] != uncompressedFlag {
		t.Errorf("expected payload below threshold to be left uncompressed")
	}

	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Seeds[0].URL != seed.URL {
		t.Fatalf("unexpected round-trip result: %+v", got)
	}
}

func TestRoundTripAboveThresholdCompressed(t *testing.T) {
	c := New(jsoncodec.New(), 16)
	req, _ := types.NewRequest("https://example.com/")
	resp := types.NewResponse(req, 200, []byte(strings.Repeat("x", 1024)), "https://example.com/", 0)
	e := &types.Event{Tag: types.EventPageCrawled, Response: resp}

	data, err := c.Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[0] != compressedFlag {
		t.Errorf("expected payload above threshold to be compressed")
	}

	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.Response.Body) != strings.Repeat("x", 1024) {
		t.Fatalf("unexpected decompressed body length: %d", len(got.Response.Body))
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	c := New(jsoncodec.New(), 4096)
	if _, err := c.Decode(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestDecodeUnknownFlag(t *testing.T) {
	c := New(jsoncodec.New(), 4096)
	if _, err := c.Decode([]byte{9, 1, 2, 3}); err == nil {
		t.Fatal("expected error for unknown compression flag")
	}
}
