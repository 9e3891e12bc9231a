package integrity

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyChain indicates a record without events.
	ErrEmptyChain = errors.New("submission has no events")
	// ErrHashMismatch indicates an event whose stored hash or predecessor does not match recomputation.
	ErrHashMismatch = errors.New("event hash mismatch")
	// ErrFinalHashMismatch indicates the final hash does not commit to a finalized chain.
	ErrFinalHashMismatch = errors.New("final hash mismatch")
	// ErrLifecycle indicates the event kinds do not follow start, answer, finalize.
	ErrLifecycle = errors.New("unexpected submission lifecycle")
	// ErrStageOrder indicates a builder transition was requested out of order.
	ErrStageOrder = errors.New("submission stage out of order")
)

// IntegrityError describes why a submission failed verification.
type IntegrityError struct {
	Kind     error
	Index    int
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	switch e.Kind {
	case ErrHashMismatch:
		return fmt.Sprintf("%s at event %d: expected %s, found %s", e.Kind, e.Index, e.Expected, e.Actual)
	case ErrFinalHashMismatch:
		return fmt.Sprintf("%s: expected %s, found %s", e.Kind, e.Expected, e.Actual)
	case ErrLifecycle:
		return fmt.Sprintf("%s at event %d: expected %s, found %s", e.Kind, e.Index, e.Expected, e.Actual)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *IntegrityError) Unwrap() error {
	return e.Kind
}

// KindName returns a short label for metrics and logs.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrEmptyChain):
		return "empty_chain"
	case errors.Is(err, ErrHashMismatch):
		return "hash_mismatch"
	case errors.Is(err, ErrFinalHashMismatch):
		return "final_hash_mismatch"
	case errors.Is(err, ErrLifecycle):
		return "lifecycle"
	default:
		return "unknown"
	}
}
