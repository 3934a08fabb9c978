package dispatch

import (
	"errors"
	"fmt"
)

// ErrPrimaryFailedNoFallback tags errors returned when the chosen backend
// failed and no fallback path was available. The original cause is preserved
// and reachable through errors.Is / errors.As.
var ErrPrimaryFailedNoFallback = errors.New("primary backend failed and no fallback is available")

// CompleteFailureError is returned when both the primary backend and the
// fallback failed. Unwrap exposes the primary cause so callers inspecting the
// chain see the root failure first.
type CompleteFailureError struct {
	Op       Operation
	Primary  error
	Fallback error
}

func (e *CompleteFailureError) Error() string {
	return fmt.Sprintf("%s failed on both backends: primary: %v; fallback: %v", e.Op.Label(), e.Primary, e.Fallback)
}

func (e *CompleteFailureError) Unwrap() error {
	return e.Primary
}

// MirrorError wraps a failure to replicate a remote write into local storage.
// Mirroring is best effort, so this error is recorded and surfaced as a
// warning, never returned to the caller of the write.
type MirrorError struct {
	Op    Operation
	Cause error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("local mirror of %s failed: %v", e.Op.Label(), e.Cause)
}

func (e *MirrorError) Unwrap() error {
	return e.Cause
}
