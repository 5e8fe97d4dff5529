// Package brotlicodec wraps another codec.Codec, brotli-compressing the
// encoded payload when it is at least message_bus_codec.compress_min_bytes
// long (spec.md §6.1). Grounded on the teacher's internal/fetcher/http.go,
// which reads brotli-encoded HTTP bodies with brotli.NewReader; this
// codec is the write side of the same library, used over the bus
// instead of over HTTP.
package brotlicodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/scoregoat/internal/codec"
	"github.com/IshaanNene/scoregoat/internal/types"
)

const (
	compressedFlag   byte = 1
	uncompressedFlag byte = 0
)

// Codec compresses payloads from an inner codec above a size threshold.
type Codec struct {
	inner    codec.Codec
	minBytes int
	quality  int
}

// New wraps inner, compressing encoded payloads of at least minBytes.
// The brotli compression level (0-11) is fixed at 5, a reasonable
// balance of ratio versus latency for small JSON events.
func New(inner codec.Codec, minBytes int) *Codec {
	return &Codec{inner: inner, minBytes: minBytes, quality: 5}
}

// Encode delegates to the inner codec, then brotli-compresses the
// result if it meets the size threshold. Output is prefixed with a
// one-byte flag so Decode knows whether to decompress.
func (c *Codec) Encode(e *types.Event) ([]byte, error) {
	data, err := c.inner.Encode(e)
	if err != nil {
		return nil, err
	}
	if len(data) < c.minBytes {
		return append([]byte{uncompressedFlag}, data...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(compressedFlag)
	w := brotli.NewWriterLevel(&buf, c.quality)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("brotlicodec: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotlicodec: compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode inspects the leading flag byte and decompresses before
// delegating to the inner codec.
func (c *Codec) Decode(raw []byte) (*types.Event, error) {
	if len(raw) == 0 {
		return nil, &types.DecodeError{Raw: raw, Err: fmt.Errorf("empty payload")}
	}
	flag, body := raw[0], raw[1:]

	switch flag {
	case uncompressedFlag:
		return c.inner.Decode(body)
	case compressedFlag:
		r := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(r)
		if err != nil {
			return nil, &types.DecodeError{Raw: raw, Err: fmt.Errorf("brotlicodec: decompress: %w", err)}
		}
		return c.inner.Decode(decompressed)
	default:
		return nil, &types.DecodeError{Raw: raw, Err: fmt.Errorf("unknown compression flag %d", flag)}
	}
}
