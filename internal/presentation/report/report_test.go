package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
)

func sodiumPathways(t *testing.T) []mrsim.SystemPathways {
	t.Helper()
	sim, err := mrsim.New()
	require.NoError(t, err)
	m := method.BlochDecaySpectrum("23Na", method.SpectralDimension{Count: 64, SpectralWidth: 1000})
	systems := []domain.SpinSystem{
		{Name: "NaCl", Abundance: 100, Sites: []domain.Site{{Isotope: "23Na"}}},
		domain.NewSpinSystem(domain.Site{Isotope: "1H"}),
	}
	out, err := sim.Transitions(context.Background(), m, systems)
	require.NoError(t, err)
	return out
}

func TestPathways(t *testing.T) {
	md := Pathways(sodiumPathways(t))

	assert.Contains(t, md, "## NaCl")
	assert.Contains(t, md, "## spin system 1")
	assert.Contains(t, md, "| 1 | \\|1/2⟩ → \\|-1/2⟩ | [-1] | [0] | 1 |")
	assert.Contains(t, md, "_No pathways._")
	assert.Contains(t, md, "**channel_mismatch**")
}

func TestSummaryAndPeak(t *testing.T) {
	s := domain.NewSpectrum(domain.Axis{Count: 4, SpectralWidth: 400, ReferenceOffset: 50})
	s.Data = []float64{0, 0.25, 1, 0.5}
	res := &mrsim.Result{RunID: "abc", Spectrum: s, Duration: time.Second}

	idx, coords := Peak(s)
	assert.Equal(t, 2, idx)
	assert.Equal(t, []float64{50}, coords)

	md := Summary(res)
	assert.Contains(t, md, "# Simulation abc")
	assert.Contains(t, md, "- Integrated intensity: 1.75")
	assert.Contains(t, md, "| 0 | 4 | 400 | 50 | 50 |")
	assert.Contains(t, md, "at bin 2")
}

func TestPeak_TwoDimensions(t *testing.T) {
	s := domain.NewSpectrum(
		domain.Axis{Count: 2, SpectralWidth: 2},
		domain.Axis{Count: 3, SpectralWidth: 30},
	)
	s.Data[1*3+2] = 1
	idx, coords := Peak(s)
	assert.Equal(t, 5, idx)
	assert.Equal(t, []float64{0, 10}, coords)
}

func TestWriteCSV(t *testing.T) {
	s := domain.NewSpectrum(domain.Axis{Count: 2, SpectralWidth: 20, Label: "13C"})
	s.Data = []float64{0.5, 1}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"13C_hz,intensity", "-10,0.5", "0,1"}, lines)
}
