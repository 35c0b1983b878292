package synth

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes.
var (
	// ErrInvalidParameter rejects a note or setting before any voice stage
	// is built.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDecodeIgnorable marks a control frame that is dropped without effect.
	ErrDecodeIgnorable = errors.New("ignorable control frame")
)

// ParamError describes which field of a request was rejected.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidParameter.
func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// InvalidParam builds a *ParamError.
func InvalidParam(field string, value any, reason string) *ParamError {
	return &ParamError{Field: field, Value: value, Reason: reason}
}
