package pathway

import (
	"fmt"
	"strings"

	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
)

// Pathway is one transition per event of a method, in event traversal order.
type Pathway struct {
	Transitions []domain.Transition `json:"transitions"`
	Weight      float64             `json:"weight"`
}

func (p Pathway) String() string {
	parts := make([]string, len(p.Transitions))
	for i, t := range p.Transitions {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ⇒ ")
}

// EventCatalog is the set of transitions selected for one event.
type EventCatalog struct {
	Dimension   int
	Event       int
	Symmetries  []Symmetry
	Transitions *domain.TransitionList
}

// Catalogs resolves the query of every event of m against sys and filters the
// spin system's transitions by each resolved symmetry. Sub-catalogs are
// returned in traversal order. Diagnostics explain empty sub-catalogs that
// stem from a channel mismatch or an over-specified query.
func Catalogs(m method.Method, sys domain.SpinSystem) ([]EventCatalog, []*Diagnostic, error) {
	all, err := sys.AllTransitions()
	if err != nil {
		return nil, nil, fmt.Errorf("enumerating transitions: %w", err)
	}
	isotopes := sys.Isotopes()

	var (
		catalogs    []EventCatalog
		diagnostics []*Diagnostic
	)
	for di, dim := range m.SpectralDimensions {
		for ei, ev := range dim.Events {
			symmetries, diag := ResolveQuery(ev.TransitionQuery, isotopes, m.Channels)
			if diag != nil {
				diag.Dimension, diag.Event = di, ei
				diagnostics = append(diagnostics, diag)
			}

			selected, _ := domain.NewTransitionList()
			for _, sym := range symmetries {
				var opts []domain.FilterOption
				if sym.P != nil {
					opts = append(opts, domain.WithP(sym.P))
				}
				if sym.D != nil {
					opts = append(opts, domain.WithD(sym.D))
				}
				matched, err := all.Filter(opts...)
				if err != nil {
					return nil, nil, fmt.Errorf("dimension %d event %d: %w", di, ei, err)
				}
				for _, t := range matched.Items() {
					if err := selected.Append(t); err != nil {
						return nil, nil, err
					}
				}
			}
			catalogs = append(catalogs, EventCatalog{
				Dimension:   di,
				Event:       ei,
				Symmetries:  symmetries,
				Transitions: selected,
			})
		}
	}
	return catalogs, diagnostics, nil
}

// Assemble returns every transition pathway of sys under m: the cartesian
// product of the event sub-catalogs, with the last event varying fastest.
// If any sub-catalog is empty the result is empty.
func Assemble(m method.Method, sys domain.SpinSystem) ([]Pathway, []*Diagnostic, error) {
	catalogs, diagnostics, err := Catalogs(m, sys)
	if err != nil {
		return nil, nil, err
	}
	factors := make([][]domain.Transition, len(catalogs))
	for i, c := range catalogs {
		factors[i] = c.Transitions.Items()
	}
	return Product(factors...), diagnostics, nil
}

// Product returns the cartesian product of factors as unit-weight pathways.
// Zero factors, or any empty factor, yield no pathways.
func Product(factors ...[]domain.Transition) []Pathway {
	if len(factors) == 0 {
		return nil
	}
	total := 1
	for _, f := range factors {
		total *= len(f)
	}
	if total == 0 {
		return nil
	}

	out := make([]Pathway, 0, total)
	choice := make([]int, len(factors))
	for {
		p := Pathway{Transitions: make([]domain.Transition, len(factors)), Weight: 1}
		for i, f := range factors {
			p.Transitions[i] = f[choice[i]]
		}
		out = append(out, p)

		i := len(factors) - 1
		for ; i >= 0; i-- {
			choice[i]++
			if choice[i] < len(factors[i]) {
				break
			}
			choice[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}
