package domain

import (
	"fmt"

	"github.com/aretw0/mrsim/pkg/schema"
)

// DefaultAbundance is the abundance, in percent, of a spin system that does
// not declare one.
const DefaultAbundance = 100.0

// SpinSystem is a set of sites sharing a relative abundance weight.
// Sites are uncoupled; transition frequencies are sums of site terms.
type SpinSystem struct {
	Name        string `json:"name,omitempty" mapstructure:"name"`
	Label       string `json:"label,omitempty" mapstructure:"label"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Sites       []Site `json:"sites" mapstructure:"sites" validate:"dive"`
	// Abundance is given in percent.
	Abundance float64 `json:"abundance" mapstructure:"abundance" validate:"gte=0,lte=100"`
}

// NewSpinSystem returns a spin system with default abundance.
func NewSpinSystem(sites ...Site) SpinSystem {
	return SpinSystem{Sites: sites, Abundance: DefaultAbundance}
}

// Validate checks tag constraints and the isotope of every site.
func (s SpinSystem) Validate() error {
	if err := schema.ValidateStruct(s); err != nil {
		return err
	}
	var errs []error
	for i, site := range s.Sites {
		iso, err := LookupIsotope(site.Isotope)
		if err != nil {
			errs = append(errs, &schema.ValidationError{
				Key:    fmt.Sprintf("sites[%d].isotope", i),
				Reason: err.Error(),
				Value:  site.Isotope,
				Err:    err,
			})
			continue
		}
		if site.Quadrupolar != nil && !iso.IsQuadrupolar() {
			errs = append(errs, &schema.ValidationError{
				Key:    fmt.Sprintf("sites[%d].quadrupolar", i),
				Reason: fmt.Sprintf("%s has spin %g, quadrupolar interaction requires spin > 1/2", iso.Symbol, iso.Spin),
			})
		}
	}
	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}

// Fraction returns the abundance as a fraction of one.
func (s SpinSystem) Fraction() float64 { return s.Abundance / 100 }

// Isotopes returns the isotope symbol of every site, in site order.
func (s SpinSystem) Isotopes() []string {
	out := make([]string, len(s.Sites))
	for i, site := range s.Sites {
		out[i] = site.Isotope
	}
	return out
}

// IsotopesWithSpin returns the site isotope symbols whose spin equals spin.
func (s SpinSystem) IsotopesWithSpin(spin float64) ([]string, error) {
	out := []string{}
	for _, site := range s.Sites {
		iso, err := LookupIsotope(site.Isotope)
		if err != nil {
			return nil, err
		}
		if iso.Spin == spin {
			out = append(out, site.Isotope)
		}
	}
	return out, nil
}

// ZeemanStates enumerates every product state of the sites. Each site runs
// from -I to +I; site 0 varies slowest.
func (s SpinSystem) ZeemanStates() ([][]float64, error) {
	states := [][]float64{{}}
	for _, site := range s.Sites {
		iso, err := LookupIsotope(site.Isotope)
		if err != nil {
			return nil, err
		}
		levels := int(2*iso.Spin) + 1
		next := make([][]float64, 0, len(states)*levels)
		for _, prefix := range states {
			for k := 0; k < levels; k++ {
				state := make([]float64, len(prefix), len(prefix)+1)
				copy(state, prefix)
				next = append(next, append(state, -iso.Spin+float64(k)))
			}
		}
		states = next
	}
	return states, nil
}

// AllTransitions returns every (initial, final) pair of Zeeman states,
// ordered by initial state first.
func (s SpinSystem) AllTransitions() (*TransitionList, error) {
	states, err := s.ZeemanStates()
	if err != nil {
		return nil, err
	}
	list := &TransitionList{items: make([]Transition, 0, len(states)*len(states))}
	for _, initial := range states {
		for _, final := range states {
			list.items = append(list.items, Transition{initial: initial, final: final})
		}
	}
	return list, nil
}
