package schedule

import "errors"

// Error kinds returned by the schedule core. Callers match them with errors.Is;
// the wrapped message carries the specific reason.
var (
	// ErrFormat reports text that violates the schedule encoding.
	ErrFormat = errors.New("invalid schedule format")
	// ErrCapacity reports an attempt to store more than MaxTransitions entries.
	ErrCapacity = errors.New("schedule capacity exceeded")
	// ErrInvariant reports an illegal structural mutation.
	ErrInvariant = errors.New("schedule invariant violated")
)
