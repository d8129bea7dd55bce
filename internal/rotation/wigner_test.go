package rotation

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmallD_Orthogonal(t *testing.T) {
	for _, beta := range []float64{0, 0.3, math.Pi / 2, 2.5} {
		d := SmallD(beta)
		for i := 0; i < 5; i++ {
			for j := 0; j < 5; j++ {
				dot := 0.0
				for k := 0; k < 5; k++ {
					dot += d[i][k] * d[j][k]
				}
				want := 0.0
				if i == j {
					want = 1
				}
				assert.InDelta(t, want, dot, 1e-12)
			}
		}
	}
}

func TestSmallD_Composition(t *testing.T) {
	a, b, ab := SmallD(0.7), SmallD(1.1), SmallD(1.8)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			sum := 0.0
			for k := 0; k < 5; k++ {
				sum += a[i][k] * b[k][j]
			}
			assert.InDelta(t, ab[i][j], sum, 1e-12)
		}
	}
}

func TestSmallD_Symmetry(t *testing.T) {
	d := SmallD(0.9)
	for m := -2; m <= 2; m++ {
		for k := -2; k <= 2; k++ {
			sign := 1.0
			if (m-k)%2 != 0 {
				sign = -1
			}
			assert.InDelta(t, sign*d[k+2][m+2], d[m+2][k+2], 1e-15)
			assert.InDelta(t, d[-k+2][-m+2], d[m+2][k+2], 1e-15)
		}
	}

	id := SmallD(0)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, id[i][j], 1e-15)
		}
	}
	assert.InDelta(t, -0.5, SmallD(math.Pi/2)[2][2], 1e-15)
}

func TestSmallD_NoAllocs(t *testing.T) {
	var sink [5][5]float64
	allocs := testing.AllocsPerRun(100, func() { sink = SmallD(0.3) })
	assert.Zero(t, allocs)
	_ = sink
}

func TestRotate_AxialTensor(t *testing.T) {
	zeta := 60.0
	pas := PAS(zeta, 0)
	for _, beta := range []float64{0, 0.5, magicAngle, math.Pi / 2} {
		r := Rotate(pas, 0.4, beta, 0)
		p2 := (3*math.Cos(beta)*math.Cos(beta) - 1) / 2
		assert.InDelta(t, math.Sqrt(1.5)*zeta*p2, real(r.At(0)), 1e-9)
		assert.InDelta(t, 0, imag(r.At(0)), 1e-9)
	}
}

func TestRotate_PreservesNorm(t *testing.T) {
	pas := PAS(40, 0.6)
	r := Rotate(pas, 0.3, 1.2, 2.1)
	norm := func(x Tensor) float64 {
		s := 0.0
		for _, c := range x {
			s += cmplx.Abs(c) * cmplx.Abs(c)
		}
		return s
	}
	assert.InDelta(t, norm(pas), norm(r), 1e-9)
}

func TestRotor_Lab(t *testing.T) {
	tensor := Rotate(PAS(50, 0.3), 0.2, 0.9, 0)
	rotor := NewRotor(0.6)
	for _, phase := range []float64{0, 1.3} {
		want := Rotate(tensor, phase, 0.6, 0)
		got := rotor.Lab(tensor, phase)
		for k := -2; k <= 2; k++ {
			assert.InDelta(t, real(want.At(k)), real(got.At(k)), 1e-9)
			assert.InDelta(t, imag(want.At(k)), imag(got.At(k)), 1e-9)
		}
		assert.InDelta(t, real(want.At(0)), real(rotor.Lab0(tensor, phase)), 1e-9)
	}
}

// Under magic-angle spinning the rotor-period average of the k = 0 lab
// component vanishes.
func TestRotor_MagicAngleAverage(t *testing.T) {
	tensor := Rotate(PAS(50, 0.3), 0.2, 0.9, 0)
	rotor := NewRotor(magicAngle)
	const n = 16
	var sum complex128
	for j := 0; j < n; j++ {
		sum += rotor.Lab0(tensor, 2*math.Pi*float64(j)/n)
	}
	assert.InDelta(t, 0, cmplx.Abs(sum)/n, 1e-9)
}

var magicAngle = math.Acos(1 / math.Sqrt(3))
