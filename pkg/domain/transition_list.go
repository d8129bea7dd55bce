package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// TransitionList is an ordered, mutable collection of Transitions.
// Elements may be supplied as Transition, *Transition, or a map with
// "initial" and "final" keys. Not safe for concurrent mutation.
type TransitionList struct {
	items []Transition
}

// NewTransitionList builds a list from the given values.
func NewTransitionList(values ...any) (*TransitionList, error) {
	l := &TransitionList{items: make([]Transition, 0, len(values))}
	for _, v := range values {
		if err := l.Append(v); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Len returns the number of transitions in the list.
func (l *TransitionList) Len() int { return len(l.items) }

// Items returns a copy of the underlying transitions.
func (l *TransitionList) Items() []Transition {
	return append([]Transition(nil), l.items...)
}

// At returns the transition at index i.
func (l *TransitionList) At(i int) (Transition, error) {
	if i < 0 || i >= len(l.items) {
		return Transition{}, fmt.Errorf("at %d of %d: %w", i, len(l.items), ErrOutOfRange)
	}
	return l.items[i], nil
}

// Append adds a value to the end of the list.
func (l *TransitionList) Append(v any) error {
	t, err := toTransition(v)
	if err != nil {
		return err
	}
	l.items = append(l.items, t)
	return nil
}

// Set replaces the transition at index i.
func (l *TransitionList) Set(i int, v any) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("set %d of %d: %w", i, len(l.items), ErrOutOfRange)
	}
	t, err := toTransition(v)
	if err != nil {
		return err
	}
	l.items[i] = t
	return nil
}

// Insert places a value before index i. An index equal to Len appends.
func (l *TransitionList) Insert(i int, v any) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("insert %d of %d: %w", i, len(l.items), ErrOutOfRange)
	}
	t, err := toTransition(v)
	if err != nil {
		return err
	}
	l.items = append(l.items, Transition{})
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = t
	return nil
}

// Delete removes the transition at index i.
func (l *TransitionList) Delete(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("delete %d of %d: %w", i, len(l.items), ErrOutOfRange)
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return nil
}

// Equal reports whether both lists hold equal transitions in the same order.
func (l *TransitionList) Equal(other *TransitionList) bool {
	if l == nil || other == nil {
		return l == other
	}
	if len(l.items) != len(other.items) {
		return false
	}
	for i := range l.items {
		if !l.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// FilterOption selects a symmetry functional target for Filter.
type FilterOption func(*filterTargets)

type filterTargets struct {
	p []int
	d []int
}

// WithP keeps transitions whose P vector equals target.
func WithP(target []int) FilterOption {
	return func(f *filterTargets) { f.p = target }
}

// WithD keeps transitions whose D vector equals target.
func WithD(target []int) FilterOption {
	return func(f *filterTargets) { f.d = target }
}

// Filter returns the transitions matching every supplied functional target.
// Without options it returns an unfiltered copy. A target whose length
// differs from a transition's site count fails with ErrLengthMismatch.
func (l *TransitionList) Filter(opts ...FilterOption) (*TransitionList, error) {
	var sel filterTargets
	for _, opt := range opts {
		opt(&sel)
	}

	out := &TransitionList{items: make([]Transition, 0, len(l.items))}
	for _, t := range l.items {
		ok, err := matches(t.P, sel.p, t.Sites())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ok, err = matches(t.D, sel.d, t.Sites())
		if err != nil {
			return nil, err
		}
		if ok {
			out.items = append(out.items, t)
		}
	}
	return out, nil
}

func matches(vector func() []int, target []int, sites int) (bool, error) {
	if target == nil {
		return true, nil
	}
	if len(target) != sites {
		return false, fmt.Errorf("target %v for %d sites: %w", target, sites, ErrLengthMismatch)
	}
	for i, v := range vector() {
		if v != target[i] {
			return false, nil
		}
	}
	return true, nil
}

func toTransition(v any) (Transition, error) {
	switch val := v.(type) {
	case Transition:
		return val, nil
	case *Transition:
		if val == nil {
			return Transition{}, &TypeError{Got: "nil"}
		}
		return *val, nil
	case map[string]any:
		var raw transitionJSON
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &raw,
			ErrorUnused: true,
		})
		if err != nil {
			return Transition{}, err
		}
		if err := decoder.Decode(val); err != nil {
			return Transition{}, fmt.Errorf("%w: %v", &TypeError{Got: "map"}, err)
		}
		if raw.Initial == nil || raw.Final == nil {
			return Transition{}, fmt.Errorf("%w: missing %q or %q", &TypeError{Got: "map"}, KeyInitial, KeyFinal)
		}
		return NewTransition(raw.Initial, raw.Final)
	case nil:
		return Transition{}, &TypeError{Got: "nil"}
	default:
		return Transition{}, &TypeError{Got: fmt.Sprintf("%T", v)}
	}
}
