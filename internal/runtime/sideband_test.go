package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSidebandSolver_Constant(t *testing.T) {
	s := newSidebandSolver(16)
	samples := make([]float64, 16)
	for i := range samples {
		samples[i] = 250
	}
	intensities := make([]float64, 16)

	mean := s.solve(samples, 1000, intensities)

	assert.InDelta(t, 250, mean, 1e-9)
	assert.InDelta(t, 1, intensities[0], 1e-12)
	for k := 1; k < 16; k++ {
		assert.InDelta(t, 0, intensities[k], 1e-12)
	}
}

func TestSidebandSolver_BesselPattern(t *testing.T) {
	// a frequency A·cos(ωr·t) modulates the phase by (A/νr)·sin(ωr·t),
	// so sideband k carries J_k(A/νr)².
	const (
		n     = 32
		rotor = 2000.0
		amp   = 2000.0
		base  = -300.0
	)
	s := newSidebandSolver(n)
	samples := make([]float64, n)
	for j := range samples {
		samples[j] = base + amp*math.Cos(2*math.Pi*float64(j)/n)
	}
	intensities := make([]float64, n)

	mean := s.solve(samples, rotor, intensities)
	assert.InDelta(t, base, mean, 1e-9)

	x := amp / rotor
	total := 0.0
	for k, v := range intensities {
		order := sidebandOrder(k, n)
		want := math.Pow(math.Jn(order, x), 2)
		assert.InDelta(t, want, v, 1e-9, "order %d", order)
		total += v
	}
	assert.InDelta(t, 1, total, 1e-12)
	assert.InDelta(t, math.Pow(math.J0(x), 2), intensities[0], 1e-9)
}

func TestSidebandOrder(t *testing.T) {
	assert.Equal(t, 0, sidebandOrder(0, 8))
	assert.Equal(t, 3, sidebandOrder(3, 8))
	assert.Equal(t, -4, sidebandOrder(4, 8))
	assert.Equal(t, -1, sidebandOrder(7, 8))
}
