package config

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
	"github.com/aretw0/mrsim/pkg/postsim"
	"github.com/aretw0/mrsim/pkg/schema"
)

func TestLoad_Wollastonite(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "wollastonite.yaml"))
	require.NoError(t, err)

	require.Len(t, doc.SpinSystems, 3)
	first := doc.SpinSystems[0]
	assert.Equal(t, "Si1", first.Name)
	assert.Equal(t, 100.0, first.Abundance)
	require.Len(t, first.Sites, 1)
	assert.Equal(t, "29Si", first.Sites[0].Isotope)
	assert.InDelta(t, -89.0, first.Sites[0].IsotropicChemicalShift, 1e-12)
	require.NotNil(t, first.Sites[0].ShieldingSymmetric)
	assert.InDelta(t, 59.8, first.Sites[0].ShieldingSymmetric.Zeta, 1e-12)
	assert.InDelta(t, 0.62, first.Sites[0].ShieldingSymmetric.Eta, 1e-12)
	assert.Nil(t, first.Sites[0].Quadrupolar)
	assert.Equal(t, domain.DefaultAbundance, doc.SpinSystems[1].Abundance)

	m := doc.Method
	assert.Equal(t, []string{"29Si"}, m.Channels)
	require.Len(t, m.SpectralDimensions, 1)
	dim := m.SpectralDimensions[0]
	assert.Equal(t, 2048, dim.Count)
	assert.InDelta(t, 25000, dim.SpectralWidth, 1e-9)
	assert.InDelta(t, -5000, dim.ReferenceOffset, 1e-9)
	require.Len(t, dim.Events, 1)
	ev := dim.Events[0]
	assert.InDelta(t, 14.1, ev.MagneticFluxDensity, 1e-12)
	assert.InDelta(t, 1500, ev.RotorFrequency, 1e-9)
	assert.InDelta(t, method.MagicAngle, ev.RotorAngle, 1e-6)
	assert.Equal(t, 1.0, ev.Fraction)
	assert.Equal(t, method.DefaultQuery(), ev.TransitionQuery)

	assert.Equal(t, 25, doc.Settings.IntegrationDensity)
	assert.Equal(t, 32, doc.Settings.NumberOfSidebands)
	assert.Equal(t, "nearest", doc.Settings.Binning)
	assert.Equal(t, "octant", doc.Settings.IntegrationVolume)

	require.NotNil(t, doc.PostSimulation)
	assert.Equal(t, 2.0, doc.PostSimulation.Scale)
	require.Len(t, doc.PostSimulation.Apodization, 1)
	ap := doc.PostSimulation.Apodization[0]
	assert.Equal(t, postsim.Lorentzian, ap.Function)
	assert.Equal(t, []float64{50}, ap.Args)
	assert.Equal(t, 1.0, ap.Fraction)

	require.NoError(t, doc.Simulation().Validate())
}

func TestParse_JSONWithQuery(t *testing.T) {
	data := []byte(`{
		"spin_systems": [{"sites": [{"isotope": "27Al", "quadrupolar": {"Cq": "3.1 MHz", "eta": 0.2, "beta": 0.5}}], "abundance": 40}],
		"method": {
			"channels": ["27Al"],
			"spectral_dimensions": [{
				"spectral_width": 50000,
				"events": [{"transition_query": {"P": {"channel-1": [[-1]]}, "D": {"channel-1": [[0]]}}}]
			}]
		}
	}`)
	doc, err := Parse(data, FormatJSON)
	require.NoError(t, err)

	q := doc.SpinSystems[0].Sites[0].Quadrupolar
	require.NotNil(t, q)
	assert.InDelta(t, 3.1e6, q.Cq, 1e-6)
	assert.InDelta(t, 0.5, q.Beta, 1e-12)
	assert.Equal(t, 40.0, doc.SpinSystems[0].Abundance)

	dim := doc.Method.SpectralDimensions[0]
	assert.Equal(t, method.DefaultCount, dim.Count)
	ev := dim.Events[0]
	assert.Equal(t, method.DefaultFluxDensity, ev.MagneticFluxDensity)
	assert.Equal(t, method.CentralTransitionQuery(), ev.TransitionQuery)
	assert.Nil(t, doc.PostSimulation)
}

func TestParse_DimensionInPPM(t *testing.T) {
	data := []byte(`
spin_systems:
  - sites: [{isotope: 29Si, isotropic_chemical_shift: -89 ppm}]
method:
  channels: [29Si]
  spectral_dimensions:
    - spectral_width: 200 ppm
      reference_offset: -80 ppm
      events: [{magnetic_flux_density: 14.1 T}]
    - spectral_width: 5 kHz
      events: [{}]
`)
	doc, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, doc.Method.SpectralDimensions, 2)

	hzPerPPM := 8.46544 * 14.1
	dim := doc.Method.SpectralDimensions[0]
	assert.InDelta(t, 200*hzPerPPM, dim.SpectralWidth, 1e-6)
	assert.InDelta(t, -80*hzPerPPM, dim.ReferenceOffset, 1e-6)
	assert.InDelta(t, 5000, doc.Method.SpectralDimensions[1].SpectralWidth, 1e-9)
}

func TestParse_PPMWithoutChannel(t *testing.T) {
	data := []byte(`{"method": {"spectral_dimensions": [{"spectral_width": "100 ppm"}]}}`)
	_, err := Parse(data, FormatJSON)
	require.Error(t, err)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "method.spectral_dimensions[0]", ve.Key)
}

func TestParse_CollectsPathErrors(t *testing.T) {
	data := []byte(`
spin_systems:
  - sites:
      - isotope: 1H
        isotropic_chemical_shift: 5 kHz
method:
  channels: [1H]
  spectral_dimensions:
    - spectral_width: 10 T
      events: [{}]
`)
	_, err := Parse(data, FormatYAML)
	require.Error(t, err)

	keys := map[string]bool{}
	for _, e := range schema.ValidationErrors(err) {
		var ve *schema.ValidationError
		require.True(t, errors.As(e, &ve))
		keys[ve.Key] = true
	}
	assert.True(t, keys["spin_systems[0].sites[0].isotropic_chemical_shift"])
	assert.True(t, keys["method.spectral_dimensions[0].spectral_width"])
	assert.ErrorIs(t, err, schema.ErrUnitMismatch)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	data := []byte(`
spin_systems:
  - sites: [{isotope: 1H, colour: blue}]
method:
  channels: [1H]
  spectral_dimensions: [{spectral_width: 1000, events: [{}]}]
extras: true
`)
	_, err := Parse(data, FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
	assert.Contains(t, err.Error(), "extras")
}

func TestParse_MissingMethod(t *testing.T) {
	_, err := Parse([]byte(`spin_systems: []`), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"method"`)

	_, err = Parse([]byte(""), FormatYAML)
	assert.Error(t, err)
}

func TestParse_BadQuery(t *testing.T) {
	data := []byte(`
method:
  channels: [1H]
  spectral_dimensions:
    - spectral_width: 1000
      events: [{transition_query: {Q: {channel-1: [[1]]}}}]
`)
	_, err := Parse(data, FormatYAML)
	require.Error(t, err)
	assert.ErrorIs(t, err, method.ErrInvalidQuery)
}

func TestSettings_Options(t *testing.T) {
	opts, err := DefaultSettings().Options()
	require.NoError(t, err)
	_, err = mrsim.New(opts...)
	require.NoError(t, err)

	bad := DefaultSettings()
	bad.Binning = "cubic"
	_, err = bad.Options()
	assert.Error(t, err)

	bad = DefaultSettings()
	bad.IntegrationVolume = "torus"
	_, err = bad.Options()
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("a/b.JSON"))
	assert.Equal(t, FormatYAML, DetectFormat("a/b.yml"))
	assert.Equal(t, FormatYAML, DetectFormat("noext"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_RotorAngleDegrees(t *testing.T) {
	data := []byte(`
method:
  channels: [13C]
  spectral_dimensions:
    - spectral_width: 1000
      events: [{rotor_angle: 90 deg, rotor_frequency: 10 kHz}]
`)
	doc, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, doc.Method.SpectralDimensions[0].Events[0].RotorAngle, 1e-12)
}

func TestSchemas_RoundTrip(t *testing.T) {
	for section, s := range Schemas() {
		raw, err := json.Marshal(s)
		require.NoError(t, err, section)

		var back schema.Schema
		require.NoError(t, json.Unmarshal(raw, &back), section)
		require.Len(t, back, len(s), section)
		for key, typ := range s {
			assert.Equal(t, typ.Name(), back[key].Name(), "%s.%s", section, key)
		}
	}
}
