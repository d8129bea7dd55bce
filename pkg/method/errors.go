package method

import "errors"

var (
	// ErrInvalidQuery is returned for a malformed transition query.
	ErrInvalidQuery = errors.New("method: invalid transition query")
	// ErrUnknownChannel is returned when a query references a channel the
	// method does not declare.
	ErrUnknownChannel = errors.New("method: query references undeclared channel")
	// ErrSpinningMismatch is returned when events of one spectral dimension
	// disagree on rotor frequency or rotor angle.
	ErrSpinningMismatch = errors.New("method: events in a dimension must share spinning conditions")
)
