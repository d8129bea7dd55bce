package runtime

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// minRotorSamples is the number of samples per rotor period used for time
// averaging. Frequencies carry rotor harmonics up to |m| = 4, so any count
// above 8 averages them exactly.
const minRotorSamples = 16

// maxHarmonic is the highest rotor harmonic of a second-order frequency.
const maxHarmonic = 4

// sidebandSolver computes spinning sideband intensities from frequency
// samples taken at equal steps over one rotor period. It keeps FFT work
// buffers and is not safe for concurrent use.
type sidebandSolver struct {
	n      int
	real   *fourier.FFT
	cmplx  *fourier.CmplxFFT
	coeff  []complex128
	signal []complex128
	out    []complex128
}

func newSidebandSolver(n int) *sidebandSolver {
	return &sidebandSolver{
		n:      n,
		real:   fourier.NewFFT(n),
		cmplx:  fourier.NewCmplxFFT(n),
		coeff:  make([]complex128, n/2+1),
		signal: make([]complex128, n),
		out:    make([]complex128, n),
	}
}

// solve returns the rotor-period mean of samples and writes into intensities
// the γ-averaged weight of sideband k at mean + k·rotorFrequency, where
// intensities[k] holds k for k < n/2 and k - n otherwise. Intensities sum to one.
func (s *sidebandSolver) solve(samples []float64, rotorFrequency float64, intensities []float64) float64 {
	n := float64(s.n)
	s.coeff = s.real.Coefficients(s.coeff, samples)
	mean := real(s.coeff[0]) / n

	for j := 0; j < s.n; j++ {
		var phase complex128
		for m := 1; m <= maxHarmonic && m < len(s.coeff); m++ {
			a := s.coeff[m] / complex(n, 0)
			rotorStep := cmplx.Rect(1, 2*math.Pi*float64(m*j)/n)
			// the m and -m terms are conjugate, so take twice the real part
			term := a * (rotorStep - 1) / complex(0, float64(m)*rotorFrequency)
			phase += complex(2*real(term), 0)
		}
		s.signal[j] = cmplx.Rect(1, real(phase))
	}

	s.out = s.cmplx.Coefficients(s.out, s.signal)
	for k, f := range s.out {
		amp := cmplx.Abs(f) / n
		intensities[k] = amp * amp
	}
	return mean
}

// sidebandOrder maps an FFT index to its sideband order.
func sidebandOrder(index, n int) int {
	if index < n/2 {
		return index
	}
	return index - n
}
