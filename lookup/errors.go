package lookup

import (
	"errors"
	"fmt"
)

var (
	// ErrLookupFailed is the sentinel wrapped by every FailureError
	ErrLookupFailed = errors.New("lookup failed")

	// ErrModelUnavailable is returned when no model is configured
	ErrModelUnavailable = errors.New("model unavailable")

	errEmptyReply   = errors.New("empty reply")
	errMissingRate  = errors.New("reply has no exchange rate")
	errInvalidRate  = errors.New("exchange rate must be a positive finite number")
	errInvalidReply = errors.New("reply is not a JSON object or a number")
)

// FailureError is returned whenever the official rate could not be obtained
type FailureError struct {
	Err error
	Op  string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrLookupFailed, e.Op, e.Err)
}

func (e *FailureError) Unwrap() []error {
	return []error{ErrLookupFailed, e.Err}
}
