package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mrsim/pkg/adapters/memory"
)

const sodiumDoc = `
spin_systems:
  - name: NaCl
    sites: [{isotope: 23Na, isotropic_chemical_shift: 10 ppm}]
method:
  channels: [23Na]
  spectral_dimensions:
    - count: 512
      spectral_width: 20 kHz
      events: [{transition_query: {P: {channel-1: [[-1]]}, D: {channel-1: [[0]]}}}]
simulation:
  integration_density: 4
`

func TestHandleSimulate(t *testing.T) {
	store := memory.NewStore()
	s := NewServer(store)

	resp, err := s.handleSimulate(context.Background(), mcp.CallToolRequest{}, DocumentArgs{Document: sodiumDoc, Key: "nacl"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pathways)
	assert.Zero(t, resp.Faults)
	assert.InDelta(t, 1.0, resp.Area, 1e-9)
	require.Len(t, resp.Peak.Frequency, 1)
	assert.Greater(t, resp.Peak.Intensity, 0.5)

	stored, err := store.Load(context.Background(), "nacl")
	require.NoError(t, err)
	assert.Equal(t, resp.Spectrum.Data, stored.Data)
}

func TestHandleSimulate_Errors(t *testing.T) {
	s := NewServer(nil)
	ctx := context.Background()

	_, err := s.handleSimulate(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: sodiumDoc, Key: "x"})
	assert.Error(t, err)

	_, err = s.handleSimulate(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "method: [", Format: "yaml"})
	assert.Error(t, err)

	_, err = s.handleSimulate(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: `{"method": {}}`, Format: "json"})
	assert.Error(t, err)
}

func TestHandlePathways(t *testing.T) {
	s := NewServer(nil)
	resp, err := s.handlePathways(context.Background(), mcp.CallToolRequest{}, DocumentArgs{Document: sodiumDoc})
	require.NoError(t, err)
	require.Len(t, resp.Systems, 1)
	assert.Equal(t, "NaCl", resp.Systems[0].Name)
	require.Len(t, resp.Systems[0].Pathways, 1)
	assert.Empty(t, resp.Systems[0].Diagnostics)
}

func TestToolsList(t *testing.T) {
	s := NewServer(nil)
	msg := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"simulate"`)
	assert.Contains(t, string(data), `"transition_pathways"`)
}

func TestPeakFrequency(t *testing.T) {
	resp, err := NewServer(nil).handleSimulate(context.Background(), mcp.CallToolRequest{}, DocumentArgs{Document: sodiumDoc})
	require.NoError(t, err)
	axis := resp.Spectrum.Axes[0]
	assert.Equal(t, axis.CoordinatesHz()[resp.Peak.Index], resp.Peak.Frequency[0])
}
