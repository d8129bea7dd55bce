package pathway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/mrsim/pkg/method"
)

var (
	// ErrChannelMismatch reports a method channel whose isotope has no site
	// in the spin system.
	ErrChannelMismatch = errors.New("pathway: channel isotope absent from spin system")
	// ErrQueryOverspecified reports a target vector longer than the number of
	// sites of the channel isotope.
	ErrQueryOverspecified = errors.New("pathway: query requires more sites than available")
)

// Diagnostic explains why a query resolved to no symmetries. It is returned
// next to the empty result rather than as a failure; callers decide whether
// to surface it.
type Diagnostic struct {
	Err        error
	Functional method.Functional
	Channel    int
	Isotope    string
	Detail     string
	// Dimension and Event locate the query within a method. They are -1 when
	// the resolver is used outside the assembler.
	Dimension int
	Event     int
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s %s (%s): %s", d.Functional, method.ChannelKey(d.Channel), d.Isotope, d.Detail)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// Kind returns a short label for metrics and logs.
func (d *Diagnostic) Kind() string {
	switch {
	case errors.Is(d.Err, ErrChannelMismatch):
		return "channel_mismatch"
	case errors.Is(d.Err, ErrQueryOverspecified):
		return "query_overspecified"
	}
	return "unknown"
}

// MarshalJSON encodes the diagnostic with its kind and message.
func (d *Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       string `json:"kind"`
		Message    string `json:"message"`
		Functional string `json:"functional"`
		Channel    string `json:"channel"`
		Isotope    string `json:"isotope,omitempty"`
		Dimension  int    `json:"dimension"`
		Event      int    `json:"event"`
	}{
		Kind:       d.Kind(),
		Message:    d.Error(),
		Functional: string(d.Functional),
		Channel:    method.ChannelKey(d.Channel),
		Isotope:    d.Isotope,
		Dimension:  d.Dimension,
		Event:      d.Event,
	})
}
