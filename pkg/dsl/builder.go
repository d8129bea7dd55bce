package dsl

import (
	"fmt"

	"github.com/aretw0/mrsim/pkg/method"
)

// Builder assembles a method from its channels, dimensions and events.
type Builder struct {
	method method.Method
	dims   []*DimensionBuilder
}

// New creates a method builder for the given channel isotopes.
func New(channels ...string) *Builder {
	return &Builder{method: method.Method{Channels: channels}}
}

// Name sets the method name.
func (b *Builder) Name(name string) *Builder {
	b.method.Name = name
	return b
}

// Description sets the method description.
func (b *Builder) Description(text string) *Builder {
	b.method.Description = text
	return b
}

// Dimension appends a spectral dimension with count points spanning
// spectralWidth Hz.
func (b *Builder) Dimension(count int, spectralWidth float64) *DimensionBuilder {
	db := &DimensionBuilder{
		dim:     method.SpectralDimension{Count: count, SpectralWidth: spectralWidth},
		builder: b,
	}
	b.dims = append(b.dims, db)
	return db
}

// Build assembles and validates the method.
func (b *Builder) Build() (method.Method, error) {
	m := b.method
	m.Channels = append([]string(nil), b.method.Channels...)
	m.SpectralDimensions = make([]method.SpectralDimension, 0, len(b.dims))
	for _, db := range b.dims {
		m.SpectralDimensions = append(m.SpectralDimensions, db.Build())
	}
	if err := m.Validate(); err != nil {
		return method.Method{}, fmt.Errorf("failed to build method: %w", err)
	}
	return m, nil
}
