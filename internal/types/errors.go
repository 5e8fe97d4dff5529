package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL      = errors.New("invalid URL")
	ErrPartitionRange  = errors.New("partition id out of range")
	ErrMissingStrategy = errors.New("no crawling strategy configured")
	ErrWorkerStopped   = errors.New("worker has been stopped")
)

// DecodeError wraps a malformed or unexpected-shape spider-log message.
// It is never fatal: the batch pipeline logs it (with a hex dump of the
// raw message) and skips the message, per spec.md §4.3/§7.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BackendError wraps an error from the states backend (fetch, set_states,
// update_cache, flush). It propagates out of whichever task invoked the
// backend; the task scheduler logs it and restarts the task, per spec.md §7.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("states backend error (%s): %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// BusError wraps an error from the message bus (consumer poll or producer
// send). Same restart policy as BackendError.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("message bus error (%s): %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }
