// Package jsoncodec implements codec.Codec as a tagged-union JSON
// envelope, one object per event with a "tag" discriminator and the
// fields relevant to that tag populated. Grounded on the teacher's
// general preference for the standard library's encoding/json
// (internal/storage, internal/config) over a third-party
// serialization library, since no pack repo pulls in one for a plain
// struct-to-wire format.
package jsoncodec

import (
	"encoding/json"
	"fmt"

	"github.com/IshaanNene/scoregoat/internal/types"
)

// Codec is the JSON codec.Codec implementation.
type Codec struct{}

// New returns a JSON Codec.
func New() *Codec { return &Codec{} }

type wireEvent struct {
	Tag          types.EventTag    `json:"tag"`
	Seeds        []*types.Request  `json:"seeds,omitempty"`
	Request      *types.Request    `json:"request,omitempty"`
	Links        []*types.Request  `json:"links,omitempty"`
	ErrorRequest *types.Request    `json:"error_request,omitempty"`
	Error        string            `json:"error,omitempty"`
	StatusCode   int               `json:"status_code,omitempty"`
	Body         []byte            `json:"body,omitempty"`
	FinalURL     string            `json:"final_url,omitempty"`
	Partition    int               `json:"partition,omitempty"`
	Offset       int64             `json:"offset,omitempty"`
	Fingerprint  types.Fingerprint `json:"fingerprint,omitempty"`
	Score        float64           `json:"score,omitempty"`
	Schedule     bool              `json:"schedule,omitempty"`
}

// Encode serializes an event to its tagged JSON envelope.
func (c *Codec) Encode(e *types.Event) ([]byte, error) {
	w := wireEvent{
		Tag:          e.Tag,
		Seeds:        e.Seeds,
		Request:      e.Request,
		Links:        e.Links,
		ErrorRequest: e.ErrorRequest,
		Error:        e.Error,
		Partition:    e.Partition,
		Offset:       e.Offset,
	}
	if e.Response != nil {
		w.Request = e.Response.Request
		w.StatusCode = e.Response.StatusCode
		w.Body = e.Response.Body
		w.FinalURL = e.Response.FinalURL
	}
	if e.Tag == types.EventUpdateScore {
		w.Fingerprint = e.ScoreFingerprint
		w.Score = e.Score
		w.Schedule = e.Schedule
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("jsoncodec: encode: %w", err)
	}
	return data, nil
}

// Decode parses a tagged JSON envelope back into an Event. Malformed
// input is wrapped in a *types.DecodeError carrying the raw bytes, so
// callers can hex-dump and skip per spec.md §4.3 rather than treating
// it as a fatal condition.
func (c *Codec) Decode(raw []byte) (*types.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &types.DecodeError{Raw: raw, Err: err}
	}
	if w.Tag == "" {
		return nil, &types.DecodeError{Raw: raw, Err: fmt.Errorf("missing tag")}
	}

	e := &types.Event{
		Tag:          w.Tag,
		Seeds:        w.Seeds,
		Request:      w.Request,
		Links:        w.Links,
		ErrorRequest: w.ErrorRequest,
		Error:        w.Error,
		Partition:    w.Partition,
		Offset:       w.Offset,
		Raw:          raw,
	}
	if w.Tag == types.EventUpdateScore {
		e.ScoreFingerprint = w.Fingerprint
		e.Score = w.Score
		e.Schedule = w.Schedule
	}
	if w.Tag == types.EventPageCrawled && w.Request != nil {
		e.Response = types.NewResponse(w.Request, w.StatusCode, w.Body, w.FinalURL, 0)
	}
	return e, nil
}
