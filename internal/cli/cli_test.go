package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/aretw0/mrsim/pkg/adapters/redis"
)

const carbonDoc = `
spin_systems:
  - name: methyl
    sites:
      - isotope: 13C
        isotropic_chemical_shift: 20 ppm
        shielding_symmetric: {zeta: 10 ppm, eta: 0.3}
method:
  name: bloch
  channels: [13C]
  spectral_dimensions:
    - count: 128
      spectral_width: 20 kHz
      events: [{rotor_frequency: 5 kHz}]
simulation:
  integration_density: 6
  number_of_sidebands: 8
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSimulate_Text(t *testing.T) {
	var out bytes.Buffer
	err := Simulate(context.Background(), Options{File: writeDoc(t, carbonDoc)}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "# Simulation")
	assert.Contains(t, out.String(), "- Pathways: 1")
}

func TestSimulate_JSON(t *testing.T) {
	var out bytes.Buffer
	err := Simulate(context.Background(), Options{File: writeDoc(t, carbonDoc), Output: OutputJSON, Workers: 2}, &out)
	require.NoError(t, err)

	var res struct {
		Spectrum struct {
			Data []float64 `json:"data"`
		} `json:"spectrum"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Spectrum.Data, 128)
	total := 0.0
	for _, v := range res.Spectrum.Data {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-2)
}

func TestSimulate_CSV(t *testing.T) {
	var out bytes.Buffer
	err := Simulate(context.Background(), Options{File: writeDoc(t, carbonDoc), Output: OutputCSV}, &out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 129)
	assert.Equal(t, "dim0_hz,intensity", lines[0])
}

func TestSimulate_Errors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	err := Simulate(ctx, Options{File: writeDoc(t, carbonDoc), Output: "xml"}, &out)
	assert.ErrorContains(t, err, "unknown output format")

	err = Simulate(ctx, Options{File: writeDoc(t, carbonDoc), StoreKey: "k"}, &out)
	assert.ErrorContains(t, err, "--redis")

	err = Simulate(ctx, Options{File: filepath.Join(t.TempDir(), "missing.yaml")}, &out)
	assert.Error(t, err)

	err = Simulate(ctx, Options{File: writeDoc(t, carbonDoc), LogLevel: "loud"}, &out)
	assert.Error(t, err)
}

func TestSimulate_StoresInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	var out bytes.Buffer
	opts := Options{File: writeDoc(t, carbonDoc), StoreKey: "methyl", RedisAddr: mr.Addr()}
	require.NoError(t, Simulate(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "Stored as `methyl`")

	store := redisadapter.New(mr.Addr(), "", 0)
	defer store.Close()
	spectrum, err := store.Load(context.Background(), "methyl")
	require.NoError(t, err)
	assert.Len(t, spectrum.Data, 128)
}

func TestSimulate_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	var out bytes.Buffer
	err := Simulate(context.Background(), Options{File: writeDoc(t, carbonDoc), RedisAddr: addr}, &out)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestTransitions(t *testing.T) {
	path := writeDoc(t, carbonDoc)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, Transitions(ctx, Options{File: path}, &out))
	assert.Contains(t, out.String(), "## methyl")
	assert.Contains(t, out.String(), "\\|1/2⟩ → \\|-1/2⟩")

	out.Reset()
	require.NoError(t, Transitions(ctx, Options{File: path, Output: OutputMermaid}, &out))
	assert.Contains(t, out.String(), "%% spin system 0 methyl")
	assert.Contains(t, out.String(), "m_1 -- \"e0\" --> m_n1")

	out.Reset()
	require.NoError(t, Transitions(ctx, Options{File: path, Output: OutputJSON}, &out))
	var systems []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &systems))
	assert.Len(t, systems, 1)

	assert.Error(t, Transitions(ctx, Options{File: path, Output: OutputCSV}, &out))
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Validate(writeDoc(t, carbonDoc), &out))
	assert.Contains(t, out.String(), "is valid: 1 spin systems, 1 spectral dimensions")

	bad := strings.Replace(carbonDoc, "eta: 0.3", "eta: 3", 1)
	assert.Error(t, Validate(writeDoc(t, bad), &out))

	badSettings := carbonDoc + "  binning: cubic\n"
	assert.Error(t, Validate(writeDoc(t, badSettings), &out))
}

func TestCreateLogger(t *testing.T) {
	l, err := createLogger(true, "")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = createLogger(false, "error")
	assert.NoError(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
