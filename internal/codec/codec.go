// Package codec defines the wire encoding for events carried over the
// message bus (spec.md §6.1 MESSAGE_BUS_CODEC). A codec is independent
// of the bus transport: the bus moves opaque bytes, and a codec turns
// those bytes into/from *types.Event.
package codec

import "github.com/IshaanNene/scoregoat/internal/types"

// Codec encodes/decodes a single *types.Event.
type Codec interface {
	Encode(e *types.Event) ([]byte, error)

	// Decode must return a *types.DecodeError wrapping the underlying
	// cause on malformed input, so callers can log-and-skip per
	// spec.md §4.3 without treating every decode failure as fatal.
	Decode(raw []byte) (*types.Event, error)
}
