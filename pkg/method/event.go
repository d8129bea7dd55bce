package method

import (
	"encoding/json"
	"math"
)

// MagicAngle is arccos(1/√3) in radians.
const MagicAngle = 0.9553166181245093

// DefaultFluxDensity is the external field, in T, of an event without one.
const DefaultFluxDensity = 9.4

// Event is one segment of a transition pathway, during which the spin
// environment is fixed.
type Event struct {
	// Fraction weights the frequency contribution of the event.
	Fraction float64 `json:"fraction" mapstructure:"fraction" validate:"finite"`
	// MagneticFluxDensity is the external field in T.
	MagneticFluxDensity float64 `json:"magnetic_flux_density" mapstructure:"magnetic_flux_density" validate:"gte=0,finite"`
	// RotorFrequency is the sample spinning rate in Hz.
	RotorFrequency float64 `json:"rotor_frequency" mapstructure:"rotor_frequency" validate:"gte=0,finite"`
	// RotorAngle is the angle between the rotor axis and the field, in rad.
	RotorAngle      float64         `json:"rotor_angle" mapstructure:"rotor_angle" validate:"gte=0,lte=1.5707963268"`
	TransitionQuery TransitionQuery `json:"transition_query" mapstructure:"transition_query"`
}

// NewEvent returns an event with default parameters, adjusted by opts.
func NewEvent(opts ...EventOption) Event {
	e := Event{
		Fraction:            1,
		MagneticFluxDensity: DefaultFluxDensity,
		RotorAngle:          MagicAngle,
		TransitionQuery:     DefaultQuery(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// EventOption adjusts an Event.
type EventOption func(*Event)

// WithFraction sets the frequency contribution weight.
func WithFraction(f float64) EventOption {
	return func(e *Event) { e.Fraction = f }
}

// WithFluxDensity sets the external magnetic field in T.
func WithFluxDensity(tesla float64) EventOption {
	return func(e *Event) { e.MagneticFluxDensity = tesla }
}

// WithRotorFrequency sets the spinning rate in Hz.
func WithRotorFrequency(hz float64) EventOption {
	return func(e *Event) { e.RotorFrequency = hz }
}

// WithRotorAngle sets the rotor angle in radians.
func WithRotorAngle(rad float64) EventOption {
	return func(e *Event) { e.RotorAngle = rad }
}

// WithQuery replaces the transition query.
func WithQuery(q TransitionQuery) EventOption {
	return func(e *Event) { e.TransitionQuery = q.Clone() }
}

// Spinning reports whether the event is under sample rotation.
func (e Event) Spinning() bool { return e.RotorFrequency > 0 }

// EffectiveRotorAngle returns the rotor angle used for frequency evaluation.
// A static sample has no rotor axis, so the lab frame is used directly.
func (e Event) EffectiveRotorAngle() float64 {
	if !e.Spinning() {
		return 0
	}
	return e.RotorAngle
}

func (e Event) sameSpinning(other Event) bool {
	return e.RotorFrequency == other.RotorFrequency &&
		math.Abs(e.RotorAngle-other.RotorAngle) < 1e-12
}

// UnmarshalJSON decodes an event, filling absent fields with defaults.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	p := plain(NewEvent())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Event(p)
	return nil
}
