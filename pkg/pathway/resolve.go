package pathway

import (
	"fmt"

	"github.com/aretw0/mrsim/pkg/method"
)

// Symmetry is one resolved selection for an event: a full-length P vector and,
// when the query constrains it, a full-length D vector. A nil vector leaves
// that functional unconstrained.
type Symmetry struct {
	P []int `json:"P,omitempty"`
	D []int `json:"D,omitempty"`
}

// siteIndex maps each channel isotope to the indices of its sites, in site
// order. Isotopes that are not channels are left out.
func siteIndex(isotopes, channels []string) map[string][]int {
	isChannel := make(map[string]bool, len(channels))
	for _, ch := range channels {
		isChannel[ch] = true
	}
	index := make(map[string][]int)
	for i, iso := range isotopes {
		if isChannel[iso] {
			index[iso] = append(index[iso], i)
		}
	}
	return index
}

// Resolve expands the per-channel targets of one functional into full-length
// per-site vectors for a spin system with the given site isotopes.
//
// Targets shorter than the number of sites of the channel isotope are padded
// by repeating their last value. Every distinct permutation of a target is a
// candidate for that channel, and candidates of successive channels are
// combined by elementwise sum. An empty result with a nil Diagnostic means
// the query is satisfiable by nothing, which is a legitimate outcome.
func Resolve(f method.Functional, targets method.ChannelTargets, isotopes, channels []string) ([][]int, *Diagnostic) {
	index := siteIndex(isotopes, channels)

	var accumulated [][]int
	for step, ch := range targets.Channels() {
		if ch < 0 || ch >= len(channels) {
			return nil, &Diagnostic{
				Err: ErrChannelMismatch, Functional: f, Channel: ch, Dimension: -1, Event: -1,
				Detail: fmt.Sprintf("method declares %d channels", len(channels)),
			}
		}
		iso := channels[ch]
		sites := index[iso]
		if len(sites) == 0 {
			return nil, &Diagnostic{
				Err: ErrChannelMismatch, Functional: f, Channel: ch, Isotope: iso, Dimension: -1, Event: -1,
				Detail: fmt.Sprintf("channel asks for %s but the spin system has %v", iso, isotopes),
			}
		}

		var candidates [][]int
		for _, target := range targets[ch] {
			if len(target) > len(sites) {
				return nil, &Diagnostic{
					Err: ErrQueryOverspecified, Functional: f, Channel: ch, Isotope: iso, Dimension: -1, Event: -1,
					Detail: fmt.Sprintf("target %v needs %d sites, spin system has %d", target, len(target), len(sites)),
				}
			}
			for _, perm := range distinctPermutations(pad(target, len(sites))) {
				full := make([]int, len(isotopes))
				for j, v := range perm {
					full[sites[j]] = v
				}
				candidates = append(candidates, full)
			}
		}
		candidates = dedupe(candidates)

		if step == 0 {
			accumulated = candidates
			continue
		}
		combined := make([][]int, 0, len(candidates)*len(accumulated))
		for _, c := range candidates {
			for _, prev := range accumulated {
				sum := make([]int, len(c))
				for i := range c {
					sum[i] = c[i] + prev[i]
				}
				combined = append(combined, sum)
			}
		}
		accumulated = combined
	}
	return dedupe(accumulated), nil
}

// ResolveQuery resolves every functional of q. When both P and D are given
// each P vector is paired with each D vector. An empty query selects
// p = -1 on the first channel.
func ResolveQuery(q method.TransitionQuery, isotopes, channels []string) ([]Symmetry, *Diagnostic) {
	if len(q) == 0 {
		q = method.DefaultQuery()
	}

	var ps, ds [][]int
	if targets, ok := q[method.FunctionalP]; ok {
		resolved, diag := Resolve(method.FunctionalP, targets, isotopes, channels)
		if diag != nil || len(resolved) == 0 {
			return nil, diag
		}
		ps = resolved
	}
	if targets, ok := q[method.FunctionalD]; ok {
		resolved, diag := Resolve(method.FunctionalD, targets, isotopes, channels)
		if diag != nil || len(resolved) == 0 {
			return nil, diag
		}
		ds = resolved
	}

	switch {
	case ps != nil && ds != nil:
		out := make([]Symmetry, 0, len(ps)*len(ds))
		for _, p := range ps {
			for _, d := range ds {
				out = append(out, Symmetry{P: p, D: d})
			}
		}
		return out, nil
	case ps != nil:
		out := make([]Symmetry, len(ps))
		for i, p := range ps {
			out[i] = Symmetry{P: p}
		}
		return out, nil
	default:
		out := make([]Symmetry, len(ds))
		for i, d := range ds {
			out[i] = Symmetry{D: d}
		}
		return out, nil
	}
}

// pad right-fills target to n entries with its last value, or zeros when
// target is empty.
func pad(target []int, n int) []int {
	out := make([]int, n)
	copy(out, target)
	fill := 0
	if len(target) > 0 {
		fill = target[len(target)-1]
	}
	for i := len(target); i < n; i++ {
		out[i] = fill
	}
	return out
}

// distinctPermutations returns each distinct ordering of v once, in order of
// first appearance when permuting by position.
func distinctPermutations(v []int) [][]int {
	var out [][]int
	used := make([]bool, len(v))
	current := make([]int, 0, len(v))

	var walk func()
	walk = func() {
		if len(current) == len(v) {
			perm := make([]int, len(current))
			copy(perm, current)
			out = append(out, perm)
			return
		}
		tried := make(map[int]bool)
		for i, x := range v {
			if used[i] || tried[x] {
				continue
			}
			tried[x] = true
			used[i] = true
			current = append(current, x)
			walk()
			current = current[:len(current)-1]
			used[i] = false
		}
	}
	walk()
	return out
}

func dedupe(vectors [][]int) [][]int {
	seen := make(map[string]bool, len(vectors))
	out := vectors[:0:0]
	for _, v := range vectors {
		key := fmt.Sprint(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
