// Package config loads simulation documents written in YAML or JSON.
//
// Physical quantities may be written as numbers in the canonical unit
// (Hz, ppm, T, rad, %) or as strings carrying a unit, such as "25 kHz" or
// "54.7356 deg".
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
	"github.com/aretw0/mrsim/pkg/orientation"
	"github.com/aretw0/mrsim/pkg/postsim"
	"github.com/aretw0/mrsim/pkg/schema"
)

// Format is the encoding of a document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// DetectFormat picks the format from a file extension. Anything other than
// .json is read as YAML, which also accepts JSON.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Settings tunes the simulator for one document.
type Settings struct {
	IntegrationDensity int    `json:"integration_density" mapstructure:"integration_density"`
	IntegrationVolume  string `json:"integration_volume" mapstructure:"integration_volume"`
	NumberOfSidebands  int    `json:"number_of_sidebands" mapstructure:"number_of_sidebands"`
	Workers            int    `json:"workers" mapstructure:"workers"`
	Binning            string `json:"binning" mapstructure:"binning"`
}

// DefaultSettings mirrors the Simulator defaults.
func DefaultSettings() Settings {
	return Settings{
		IntegrationDensity: orientation.DefaultDensity,
		IntegrationVolume:  orientation.Octant.String(),
		NumberOfSidebands:  mrsim.DefaultSidebands,
		Binning:            mrsim.BinLinear.String(),
	}
}

// Options converts the settings to Simulator options.
func (s Settings) Options() ([]mrsim.Option, error) {
	volume, err := orientation.ParseVolume(s.IntegrationVolume)
	if err != nil {
		return nil, err
	}
	binning, err := mrsim.ParseBinning(s.Binning)
	if err != nil {
		return nil, err
	}
	return []mrsim.Option{
		mrsim.WithIntegrationDensity(s.IntegrationDensity),
		mrsim.WithIntegrationVolume(volume),
		mrsim.WithSidebands(s.NumberOfSidebands),
		mrsim.WithWorkers(s.Workers),
		mrsim.WithBinning(binning),
	}, nil
}

// Document is a complete simulation request.
type Document struct {
	SpinSystems    []domain.SpinSystem    `json:"spin_systems"`
	Method         method.Method          `json:"method"`
	Settings       Settings               `json:"simulation"`
	PostSimulation *postsim.PostSimulator `json:"post_simulation,omitempty"`
}

// Simulation returns the request for mrsim.Simulator.Run.
func (d *Document) Simulation() mrsim.Simulation {
	return mrsim.Simulation{
		Method:         d.Method,
		SpinSystems:    d.SpinSystems,
		PostSimulation: d.PostSimulation,
	}
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := Parse(data, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document. Every field error is reported in a
// *schema.AggregateError whose keys are paths such as
// "spin_systems[0].sites[1].isotropic_chemical_shift".
func Parse(data []byte, format Format) (*Document, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON document: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML document: %w", err)
		}
	}
	if raw == nil {
		return nil, errors.New("empty document")
	}
	return FromMap(raw)
}

// FromMap decodes an already parsed document.
func FromMap(raw map[string]any) (*Document, error) {
	d := &decoder{}
	doc := &Document{Settings: DefaultSettings()}

	systems, _ := d.list(raw, "spin_systems", "spin_systems")
	for i, item := range systems {
		path := fmt.Sprintf("spin_systems[%d]", i)
		if m := d.asMap(item, path); m != nil {
			doc.SpinSystems = append(doc.SpinSystems, d.spinSystem(m, path))
		}
	}

	if m := d.section(raw, "method"); m != nil {
		doc.Method = d.method(m, "method")
	} else {
		d.fail("method", "required", nil)
	}

	if m := d.section(raw, "simulation"); m != nil {
		m = d.normalize(m, "simulation", schema.Schema{
			"integration_density": schema.Optional(schema.Int()),
			"number_of_sidebands": schema.Optional(schema.Int()),
			"workers":             schema.Optional(schema.Int()),
		})
		d.decode(m, &doc.Settings, "simulation")
	}

	if m := d.section(raw, "post_simulation"); m != nil {
		post := d.postSimulation(m, "post_simulation")
		doc.PostSimulation = &post
	}

	for key := range raw {
		switch key {
		case "spin_systems", "method", "simulation", "post_simulation", "name", "description":
		default:
			d.fail(key, "unknown section", nil)
		}
	}

	if len(d.errs) > 0 {
		return nil, &schema.AggregateError{Errors: d.errs}
	}
	return doc, nil
}
