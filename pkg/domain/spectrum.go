package domain

import (
	"fmt"
	"math"
)

// Axis is one frequency dimension of a spectrum.
type Axis struct {
	Count           int     `json:"count"`
	SpectralWidth   float64 `json:"spectral_width"`
	ReferenceOffset float64 `json:"reference_offset"`
	Label           string  `json:"label,omitempty"`
}

// Increment returns the bin width in Hz.
func (a Axis) Increment() float64 { return a.SpectralWidth / float64(a.Count) }

// CoordinatesHz returns the bin centres, (k - floor(N/2))·Δ + offset.
func (a Axis) CoordinatesHz() []float64 {
	out := make([]float64, a.Count)
	inc := a.Increment()
	half := a.Count / 2
	for k := range out {
		out[k] = float64(k-half)*inc + a.ReferenceOffset
	}
	return out
}

// CoordinatesPPM converts the bin centres to a frequency ratio in ppm
// relative to the given Larmor frequency in Hz.
func (a Axis) CoordinatesPPM(larmor float64) []float64 {
	hz := a.CoordinatesHz()
	denominator := math.Abs(a.ReferenceOffset+larmor) / 1e6
	for i := range hz {
		hz[i] /= denominator
	}
	return hz
}

// ReciprocalOffset returns the reciprocal (time) coordinate offset, -1/(2Δ).
func (a Axis) ReciprocalOffset() float64 { return -1 / (2 * a.Increment()) }

// Spectrum is a real-valued intensity array over one or more axes.
// Data is stored row-major with the first axis varying slowest.
type Spectrum struct {
	Axes []Axis    `json:"axes"`
	Data []float64 `json:"data"`
}

// NewSpectrum allocates a zeroed spectrum for the given axes.
func NewSpectrum(axes ...Axis) *Spectrum {
	size := 1
	for _, a := range axes {
		size *= a.Count
	}
	return &Spectrum{Axes: append([]Axis(nil), axes...), Data: make([]float64, size)}
}

// Strides returns the element stride of each axis.
func (s *Spectrum) Strides() []int {
	strides := make([]int, len(s.Axes))
	step := 1
	for i := len(s.Axes) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s.Axes[i].Count
	}
	return strides
}

// Clone returns a deep copy.
func (s *Spectrum) Clone() *Spectrum {
	return &Spectrum{
		Axes: append([]Axis(nil), s.Axes...),
		Data: append([]float64(nil), s.Data...),
	}
}

// Sum returns the total intensity.
func (s *Spectrum) Sum() float64 {
	total := 0.0
	for _, v := range s.Data {
		total += v
	}
	return total
}

// Validate checks that Data matches the axis shape.
func (s *Spectrum) Validate() error {
	size := 1
	for i, a := range s.Axes {
		if a.Count <= 0 || a.SpectralWidth <= 0 {
			return fmt.Errorf("axis %d: count and spectral width must be positive", i)
		}
		size *= a.Count
	}
	if len(s.Axes) == 0 || len(s.Data) != size {
		return fmt.Errorf("spectrum has %d values for shape of size %d: %w", len(s.Data), size, ErrLengthMismatch)
	}
	return nil
}
