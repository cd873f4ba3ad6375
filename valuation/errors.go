package valuation

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel wrapped by every ValidationError
var ErrInvalidInput = errors.New("invalid valuation input")

// ValidationError describes a single rejected input field
type ValidationError struct {
	Field  string
	Reason string
	Value  float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
