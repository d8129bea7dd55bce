package dsl

import "github.com/aretw0/mrsim/pkg/method"

// DimensionBuilder provides a fluent API for configuring a spectral dimension.
type DimensionBuilder struct {
	dim     method.SpectralDimension
	events  []*EventBuilder
	builder *Builder
}

// Offset sets the reference offset in Hz.
func (d *DimensionBuilder) Offset(hz float64) *DimensionBuilder {
	d.dim.ReferenceOffset = hz
	return d
}

// Label sets the axis label.
func (d *DimensionBuilder) Label(label string) *DimensionBuilder {
	d.dim.Label = label
	return d
}

// Event appends an event with default parameters.
func (d *DimensionBuilder) Event(opts ...method.EventOption) *EventBuilder {
	eb := &EventBuilder{event: method.NewEvent(opts...), dim: d}
	d.events = append(d.events, eb)
	return eb
}

// Build returns the underlying dimension.
func (d *DimensionBuilder) Build() method.SpectralDimension {
	dim := d.dim
	dim.Events = make([]method.Event, len(d.events))
	for i, eb := range d.events {
		dim.Events[i] = eb.Build()
	}
	return dim
}

// EventBuilder provides a fluent API for configuring an event.
type EventBuilder struct {
	event   method.Event
	queried bool
	dim     *DimensionBuilder
}

// Fraction sets the frequency contribution weight.
func (e *EventBuilder) Fraction(f float64) *EventBuilder {
	e.event.Fraction = f
	return e
}

// Field sets the magnetic flux density in T.
func (e *EventBuilder) Field(tesla float64) *EventBuilder {
	e.event.MagneticFluxDensity = tesla
	return e
}

// Spin sets the rotor frequency in Hz and rotor angle in radians.
func (e *EventBuilder) Spin(hz, angle float64) *EventBuilder {
	e.event.RotorFrequency = hz
	e.event.RotorAngle = angle
	return e
}

// Select adds targets for a functional on a zero-based channel. The first
// call replaces the default p = -1 query.
func (e *EventBuilder) Select(f method.Functional, channel int, targets ...[]int) *EventBuilder {
	if !e.queried {
		e.event.TransitionQuery = method.TransitionQuery{}
		e.queried = true
	}
	ct, ok := e.event.TransitionQuery[f]
	if !ok {
		ct = method.ChannelTargets{}
		e.event.TransitionQuery[f] = ct
	}
	for _, t := range targets {
		ct[channel] = append(ct[channel], append([]int(nil), t...))
	}
	return e
}

// Event appends a sibling event to the same dimension.
func (e *EventBuilder) Event(opts ...method.EventOption) *EventBuilder {
	return e.dim.Event(opts...)
}

// Dimension starts a new spectral dimension on the parent builder.
func (e *EventBuilder) Dimension(count int, spectralWidth float64) *DimensionBuilder {
	return e.dim.builder.Dimension(count, spectralWidth)
}

// Build returns a copy of the underlying event.
func (e *EventBuilder) Build() method.Event {
	ev := e.event
	ev.TransitionQuery = e.event.TransitionQuery.Clone()
	return ev
}
