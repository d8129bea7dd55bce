package domain

import (
	"errors"
	"fmt"
)

// ErrTypeKind is returned when a value that is neither a Transition nor a
// map convertible to one is stored in a TransitionList.
var ErrTypeKind = errors.New("domain: invalid element type")

// ErrLengthMismatch is returned when a symmetry vector does not have one
// entry per site of the transitions it is compared against.
var ErrLengthMismatch = errors.New("domain: vector length does not match site count")

// ErrOutOfRange is returned by positional TransitionList operations.
var ErrOutOfRange = errors.New("domain: index out of range")

// ErrUnknownIsotope is returned when an isotope symbol is not in the isotope table.
var ErrUnknownIsotope = errors.New("domain: unknown isotope")

// ErrNumericFault marks a frequency evaluation that produced a non-finite value.
// It is never returned from a simulation run; faults are counted instead.
var ErrNumericFault = errors.New("domain: non-finite frequency")

// TypeError reports the offending type of a rejected TransitionList element.
type TypeError struct {
	Got string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expecting a Transition object or an equivalent map, instead found %s", e.Got)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrTypeKind
}
