package method

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/schema"
)

// DefaultCount is the number of points of a dimension without one.
const DefaultCount = 1024

// SpectralDimension is one frequency axis of a method, with the ordered
// events that evolve along it.
type SpectralDimension struct {
	Count int `json:"count" mapstructure:"count" validate:"gt=0"`
	// SpectralWidth is in Hz.
	SpectralWidth float64 `json:"spectral_width" mapstructure:"spectral_width" validate:"gt=0,finite"`
	// ReferenceOffset is in Hz.
	ReferenceOffset float64 `json:"reference_offset" mapstructure:"reference_offset" validate:"finite"`
	Label           string  `json:"label,omitempty" mapstructure:"label"`
	Events          []Event `json:"events" mapstructure:"events" validate:"min=1,dive"`
}

// UnmarshalJSON decodes a dimension, filling absent fields with defaults.
func (d *SpectralDimension) UnmarshalJSON(data []byte) error {
	type plain SpectralDimension
	p := plain{Count: DefaultCount}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = SpectralDimension(p)
	return nil
}

// Axis returns the bin grid of the dimension.
func (d SpectralDimension) Axis() domain.Axis {
	return domain.Axis{
		Count:           d.Count,
		SpectralWidth:   d.SpectralWidth,
		ReferenceOffset: d.ReferenceOffset,
		Label:           d.Label,
	}
}

// CoordinatesHz returns the bin centres in Hz.
func (d SpectralDimension) CoordinatesHz() []float64 { return d.Axis().CoordinatesHz() }

// ReciprocalOffset returns the time-domain coordinate offset, -1/(2Δ).
func (d SpectralDimension) ReciprocalOffset() float64 { return d.Axis().ReciprocalOffset() }

// Method describes a measurement: the isotope of each channel and the
// spectral dimensions sampled.
type Method struct {
	Name               string              `json:"name,omitempty" mapstructure:"name"`
	Description        string              `json:"description,omitempty" mapstructure:"description"`
	Channels           []string            `json:"channels" mapstructure:"channels" validate:"min=1,dive,required"`
	SpectralDimensions []SpectralDimension `json:"spectral_dimensions" mapstructure:"spectral_dimensions" validate:"min=1,dive"`
}

// Axes returns the bin grid of every dimension in order.
func (m Method) Axes() []domain.Axis {
	out := make([]domain.Axis, len(m.SpectralDimensions))
	for i, d := range m.SpectralDimensions {
		out[i] = d.Axis()
	}
	return out
}

// Events returns every event in traversal order.
func (m Method) Events() []Event {
	var out []Event
	for _, d := range m.SpectralDimensions {
		out = append(out, d.Events...)
	}
	return out
}

// LarmorFrequency returns the Larmor frequency of the first channel at the
// field of the first event, used for ppm coordinates.
func (m Method) LarmorFrequency() (float64, error) {
	if len(m.Channels) == 0 || len(m.SpectralDimensions) == 0 || len(m.SpectralDimensions[0].Events) == 0 {
		return 0, fmt.Errorf("method has no channel or event")
	}
	iso, err := domain.LookupIsotope(m.Channels[0])
	if err != nil {
		return 0, err
	}
	return iso.LarmorFrequency(m.SpectralDimensions[0].Events[0].MagneticFluxDensity), nil
}

// Validate checks struct constraints, channel isotopes, query channels and
// the shared spinning conditions of each dimension.
func (m Method) Validate() error {
	if err := schema.ValidateStruct(m); err != nil {
		return err
	}

	var errs []error
	for i, ch := range m.Channels {
		if _, err := domain.LookupIsotope(ch); err != nil {
			errs = append(errs, &schema.ValidationError{
				Key: fmt.Sprintf("channels[%d]", i), Reason: err.Error(), Value: ch, Err: err,
			})
		}
	}
	for di, dim := range m.SpectralDimensions {
		for ei, ev := range dim.Events {
			key := fmt.Sprintf("spectral_dimensions[%d].events[%d]", di, ei)
			if highest := ev.TransitionQuery.MaxChannel(); highest >= len(m.Channels) {
				errs = append(errs, &schema.ValidationError{
					Key:    key + ".transition_query",
					Reason: fmt.Sprintf("%s is not one of %d declared channels", ChannelKey(highest), len(m.Channels)),
					Err:    ErrUnknownChannel,
				})
			}
			if ei > 0 && !ev.sameSpinning(dim.Events[0]) {
				errs = append(errs, &schema.ValidationError{
					Key:    key,
					Reason: ErrSpinningMismatch.Error(),
					Err:    ErrSpinningMismatch,
				})
			}
		}
	}
	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}
