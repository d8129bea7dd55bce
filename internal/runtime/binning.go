package runtime

import (
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/mrsim/pkg/domain"
)

// Binning selects how a frequency is deposited into the spectral grid.
type Binning int

const (
	// BinLinear splits each deposit between the two nearest bins in
	// proportion to proximity (tent interpolation).
	BinLinear Binning = iota
	// BinNearest puts the whole deposit into the nearest bin.
	BinNearest
)

func (b Binning) String() string {
	switch b {
	case BinLinear:
		return "linear"
	case BinNearest:
		return "nearest"
	}
	return fmt.Sprintf("Binning(%d)", int(b))
}

// ParseBinning parses "linear" or "nearest".
func ParseBinning(s string) (Binning, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return BinLinear, nil
	case "nearest":
		return BinNearest, nil
	}
	return BinLinear, fmt.Errorf("runtime: unknown binning %q", s)
}

// accumulator is a private histogram owned by one worker.
type accumulator struct {
	axes    []domain.Axis
	strides []int
	data    []float64
	binning Binning

	// per-dimension scratch: up to two bins and their shares
	bins   [][2]int
	shares [][2]float64
}

func newAccumulator(axes []domain.Axis, binning Binning) *accumulator {
	blank := domain.NewSpectrum(axes...)
	return &accumulator{
		axes:    blank.Axes,
		strides: blank.Strides(),
		data:    blank.Data,
		binning: binning,
		bins:    make([][2]int, len(axes)),
		shares:  make([][2]float64, len(axes)),
	}
}

// position returns the fractional bin index of frequency f on axis a.
// Bin k is centred at u = k.
func position(a domain.Axis, f float64) float64 {
	return (f-a.ReferenceOffset)/a.Increment() + float64(a.Count/2)
}

// deposit adds weight at the point freqs, one frequency per axis. Parts that
// fall outside the grid are dropped.
func (acc *accumulator) deposit(freqs []float64, weight float64) {
	for d, a := range acc.axes {
		u := position(a, freqs[d])
		switch acc.binning {
		case BinNearest:
			k := int(math.Round(u))
			if k < 0 || k >= a.Count {
				return
			}
			acc.bins[d] = [2]int{k, -1}
			acc.shares[d] = [2]float64{1, 0}
		default:
			lo := math.Floor(u)
			if lo < -1 || lo >= float64(a.Count) {
				return
			}
			k := int(lo)
			frac := u - lo
			acc.bins[d] = [2]int{k, k + 1}
			acc.shares[d] = [2]float64{1 - frac, frac}
		}
	}
	acc.scatter(0, 0, weight)
}

func (acc *accumulator) scatter(d, offset int, weight float64) {
	if d == len(acc.axes) {
		acc.data[offset] += weight
		return
	}
	for c := 0; c < 2; c++ {
		k := acc.bins[d][c]
		share := acc.shares[d][c]
		if k < 0 || k >= acc.axes[d].Count || share == 0 {
			continue
		}
		acc.scatter(d+1, offset+k*acc.strides[d], weight*share)
	}
}

func (acc *accumulator) add(other *accumulator) {
	for i, v := range other.data {
		acc.data[i] += v
	}
}
