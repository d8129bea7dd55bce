package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnitMismatch is returned when a quantity carries a unit of the wrong
// physical dimension, e.g. "10 ppm" for a spectral width.
var ErrUnitMismatch = errors.New("unit mismatch")

// UnitMismatchError describes a quantity parsed with a unit of another kind.
type UnitMismatchError struct {
	Want Kind
	Got  Kind
	Unit string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit %q is a %s, expected a %s quantity", e.Unit, e.Got, e.Want)
}

func (e *UnitMismatchError) Is(target error) bool { return target == ErrUnitMismatch }

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // Field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
	Err    error  // Underlying cause, if any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
