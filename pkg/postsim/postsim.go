package postsim

import (
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/schema"
)

// PostSimulator scales a simulated spectrum and applies apodizations in order.
type PostSimulator struct {
	Scale       float64       `json:"scale" mapstructure:"scale" validate:"finite"`
	Apodization []Apodization `json:"apodization,omitempty" mapstructure:"apodization" validate:"dive"`
}

// New returns a PostSimulator with unit scale.
func New(apodizations ...Apodization) PostSimulator {
	return PostSimulator{Scale: 1, Apodization: apodizations}
}

// UnmarshalJSON decodes a PostSimulator with scale 1 by default.
func (p *PostSimulator) UnmarshalJSON(data []byte) error {
	type plain PostSimulator
	v := plain{Scale: 1}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PostSimulator(v)
	return nil
}

// Validate checks field constraints.
func (p PostSimulator) Validate() error {
	return schema.ValidateStruct(p)
}

// Apply returns a processed copy of s. The input is not modified.
func (p PostSimulator) Apply(s *domain.Spectrum) (*domain.Spectrum, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := s.Clone()
	for i, a := range p.Apodization {
		if a.Dimension < 0 || a.Dimension >= len(out.Axes) {
			return nil, fmt.Errorf("apodization %d: dimension %d out of range for %d axes", i, a.Dimension, len(out.Axes))
		}
		apodize(out, a)
	}
	for i := range out.Data {
		out.Data[i] *= p.Scale
	}
	return out, nil
}

// apodize convolves every line of s along a.Dimension with the window by
// multiplication in the reciprocal domain.
func apodize(s *domain.Spectrum, a Apodization) {
	axis := s.Axes[a.Dimension]
	n := axis.Count
	stride := s.Strides()[a.Dimension]

	coords := axis.CoordinatesHz()
	recipOffset := axis.ReciprocalOffset()
	recipIncrement := 1 / (float64(n) * axis.Increment())

	phase := make([]complex128, n)
	window := make([]complex128, n)
	for k := range phase {
		phase[k] = cmplx.Exp(complex(0, 2*math.Pi*recipOffset*coords[k]))
		window[k] = complex(a.Window(float64(k)*recipIncrement+recipOffset), 0)
	}

	fft := fourier.NewCmplxFFT(n)
	line := make([]complex128, n)
	buf := make([]complex128, n)
	scale := complex(1/float64(n), 0)

	outer := len(s.Data) / (n * stride)
	for o := 0; o < outer; o++ {
		for inner := 0; inner < stride; inner++ {
			base := o*n*stride + inner
			for k := 0; k < n; k++ {
				line[k] = complex(s.Data[base+k*stride], 0) * phase[k]
			}
			ifftshift(buf, line)
			fft.Sequence(line, buf)
			for k := range line {
				line[k] *= scale * window[k]
			}
			fft.Coefficients(buf, line)
			fftshift(line, buf)
			for k := 0; k < n; k++ {
				s.Data[base+k*stride] = a.Fraction * real(line[k]*cmplx.Conj(phase[k]))
			}
		}
	}
}

// fftshift moves the zero-frequency term to the centre: dst[(i+n/2)%n] = src[i].
func fftshift(dst, src []complex128) {
	n := len(src)
	h := n / 2
	for i, v := range src {
		dst[(i+h)%n] = v
	}
}

// ifftshift undoes fftshift: dst[i] = src[(i+n/2)%n].
func ifftshift(dst, src []complex128) {
	n := len(src)
	h := n / 2
	for i := range dst {
		dst[i] = src[(i+h)%n]
	}
}
