package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Transition is a quantum transition between two Zeeman product states of a
// spin system. Each state holds one magnetic quantum number per site.
// A Transition is immutable once constructed.
type Transition struct {
	initial []float64
	final   []float64
}

// NewTransition builds a Transition from the initial and final state vectors.
// Both vectors must have the same length and contain half-integer values.
func NewTransition(initial, final []float64) (Transition, error) {
	if len(initial) != len(final) {
		return Transition{}, fmt.Errorf("initial has %d sites, final has %d: %w", len(initial), len(final), ErrLengthMismatch)
	}
	for _, m := range append(append([]float64(nil), initial...), final...) {
		if math.IsNaN(m) || math.IsInf(m, 0) || math.Mod(math.Abs(2*m), 1) != 0 {
			return Transition{}, fmt.Errorf("quantum number %v is not a half-integer", m)
		}
	}
	return Transition{
		initial: append([]float64(nil), initial...),
		final:   append([]float64(nil), final...),
	}, nil
}

// MustTransition is like NewTransition but panics on invalid input.
// Intended for tests and static tables.
func MustTransition(initial, final []float64) Transition {
	t, err := NewTransition(initial, final)
	if err != nil {
		panic(err)
	}
	return t
}

// Initial returns a copy of the initial state vector.
func (t Transition) Initial() []float64 { return append([]float64(nil), t.initial...) }

// Final returns a copy of the final state vector.
func (t Transition) Final() []float64 { return append([]float64(nil), t.final...) }

// Sites returns the number of sites the transition spans.
func (t Transition) Sites() int { return len(t.initial) }

// P returns the per-site Δm vector, final - initial.
func (t Transition) P() []int {
	p := make([]int, len(t.initial))
	for i := range t.initial {
		p[i] = int(math.Round(t.final[i] - t.initial[i]))
	}
	return p
}

// D returns the per-site second-order symmetry vector, final² - initial².
// The value is integral for any pair of states of the same spin.
func (t Transition) D() []int {
	d := make([]int, len(t.initial))
	for i := range t.initial {
		d[i] = int(math.Round(t.final[i]*t.final[i] - t.initial[i]*t.initial[i]))
	}
	return d
}

// DeltaM returns the total change in magnetic quantum number, sum(P()).
func (t Transition) DeltaM() int {
	sum := 0
	for _, v := range t.P() {
		sum += v
	}
	return sum
}

// ToList returns the initial vector followed by the final vector.
func (t Transition) ToList() []float64 {
	out := make([]float64, 0, 2*len(t.initial))
	out = append(out, t.initial...)
	return append(out, t.final...)
}

// Equal reports whether both transitions have identical state vectors.
func (t Transition) Equal(other Transition) bool {
	if len(t.initial) != len(other.initial) {
		return false
	}
	for i := range t.initial {
		if t.initial[i] != other.initial[i] || t.final[i] != other.final[i] {
			return false
		}
	}
	return true
}

func (t Transition) String() string {
	return fmt.Sprintf("|%s⟩ → |%s⟩", formatState(t.initial), formatState(t.final))
}

func formatState(m []float64) string {
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = formatHalf(v)
	}
	return strings.Join(parts, ", ")
}

func formatHalf(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%d/2", int(math.Round(2*v)))
}

type transitionJSON struct {
	Initial []float64 `json:"initial" mapstructure:"initial"`
	Final   []float64 `json:"final" mapstructure:"final"`
}

// MarshalJSON encodes the transition as {"initial": [...], "final": [...]}.
func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal(transitionJSON{Initial: t.initial, Final: t.final})
}

// UnmarshalJSON decodes the {"initial": [...], "final": [...]} form.
func (t *Transition) UnmarshalJSON(data []byte) error {
	var raw transitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewTransition(raw.Initial, raw.Final)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
