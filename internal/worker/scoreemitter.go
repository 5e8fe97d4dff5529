package worker

import (
	"context"

	"github.com/IshaanNene/scoregoat/internal/bus"
	"github.com/IshaanNene/scoregoat/internal/codec"
	"github.com/IshaanNene/scoregoat/internal/types"
)

// ScoreEmitter is the thin adapter strategies call to push score
// updates (spec.md §4.2). It is injected into the strategy so the
// strategy alone decides when and with what score to emit.
type ScoreEmitter struct {
	codec    codec.Codec
	producer bus.Producer
}

// NewScoreEmitter builds a ScoreEmitter over the given codec and
// scoring-log producer.
func NewScoreEmitter(c codec.Codec, producer bus.Producer) *ScoreEmitter {
	return &ScoreEmitter{codec: c, producer: producer}
}

// Send encodes (request, score, schedule) as an UpdateScore event and
// hands it to the scoring-log producer, with no routing key.
func (e *ScoreEmitter) Send(ctx context.Context, req *types.Request, score float64, schedule bool) error {
	payload, err := e.codec.Encode(&types.Event{
		Tag:              types.EventUpdateScore,
		ScoreFingerprint: req.Fingerprint,
		Score:            score,
		Schedule:         schedule,
	})
	if err != nil {
		return err
	}
	if err := e.producer.Send(ctx, payload); err != nil {
		return &types.BusError{Op: "send", Err: err}
	}
	return nil
}

// Flush is a no-op: the producer is assumed to buffer and
// background-flush on its own. Kept as a named synchronization point
// for future buffered encoders (spec.md §9) — do not remove even
// though it currently does nothing.
func (e *ScoreEmitter) Flush() error {
	return nil
}
