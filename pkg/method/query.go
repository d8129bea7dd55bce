package method

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/mrsim/pkg/schema"
)

// Functional names a transition symmetry functional.
type Functional string

const (
	// FunctionalP selects transitions by their per-site Δm.
	FunctionalP Functional = "P"
	// FunctionalD selects transitions by their per-site m_f² - m_i².
	FunctionalD Functional = "D"
)

// ChannelTargets maps a zero-based channel index to the list of target
// vectors for that channel. Each target holds one value per occurrence of the
// channel isotope in a spin system and may be shorter than that count.
type ChannelTargets map[int][][]int

// Channels returns the channel indices in ascending order.
func (c ChannelTargets) Channels() []int {
	out := make([]int, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// TransitionQuery selects the transitions active during an event.
// Multiple functionals combine with logical AND.
type TransitionQuery map[Functional]ChannelTargets

// DefaultQuery selects single-quantum (p = -1) transitions on the first channel.
func DefaultQuery() TransitionQuery {
	return TransitionQuery{FunctionalP: {0: {{-1}}}}
}

// CentralTransitionQuery selects p = -1, d = 0 transitions on the first channel.
func CentralTransitionQuery() TransitionQuery {
	return TransitionQuery{
		FunctionalP: {0: {{-1}}},
		FunctionalD: {0: {{0}}},
	}
}

// Clone returns a deep copy of the query.
func (q TransitionQuery) Clone() TransitionQuery {
	if q == nil {
		return nil
	}
	out := make(TransitionQuery, len(q))
	for f, targets := range q {
		ct := make(ChannelTargets, len(targets))
		for ch, vectors := range targets {
			copied := make([][]int, len(vectors))
			for i, v := range vectors {
				copied[i] = append([]int(nil), v...)
			}
			ct[ch] = copied
		}
		out[f] = ct
	}
	return out
}

// MaxChannel returns the highest channel index referenced, or -1.
func (q TransitionQuery) MaxChannel() int {
	highest := -1
	for _, targets := range q {
		for ch := range targets {
			if ch > highest {
				highest = ch
			}
		}
	}
	return highest
}

// ChannelKey formats a zero-based channel index as its document key, "channel-N".
func ChannelKey(index int) string { return "channel-" + strconv.Itoa(index+1) }

// ParseChannelKey parses a "channel-N" key into a zero-based index.
func ParseChannelKey(key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "channel-"))
	if err != nil || !strings.HasPrefix(key, "channel-") || n < 1 {
		return 0, fmt.Errorf("%w: channel key %q, expected channel-N with N >= 1", ErrInvalidQuery, key)
	}
	return n - 1, nil
}

var targetsType = schema.Slice(schema.Slice(schema.Int()))

// ParseTransitionQuery converts the document form
// {"P": {"channel-1": [[-1]]}, "D": {...}} into a TransitionQuery.
func ParseTransitionQuery(raw map[string]any) (TransitionQuery, error) {
	q := make(TransitionQuery, len(raw))
	for name, value := range raw {
		f := Functional(name)
		if f != FunctionalP && f != FunctionalD {
			return nil, fmt.Errorf("%w: unsupported functional %q", ErrInvalidQuery, name)
		}
		if value == nil {
			continue
		}
		channels, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: functional %s must map channels to targets, got %T", ErrInvalidQuery, name, value)
		}
		ct := make(ChannelTargets, len(channels))
		for key, list := range channels {
			ch, err := ParseChannelKey(key)
			if err != nil {
				return nil, err
			}
			normalized, err := targetsType.(schema.Normalizer).Normalize(list)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidQuery, name, key, err)
			}
			vectors := make([][]int, 0)
			for _, target := range normalized.([]any) {
				ints := target.([]any)
				v := make([]int, len(ints))
				for i, n := range ints {
					v[i] = n.(int)
				}
				vectors = append(vectors, v)
			}
			ct[ch] = vectors
		}
		q[f] = ct
	}
	return q, nil
}

// Document returns the query in its document form.
func (q TransitionQuery) Document() map[string]any {
	out := make(map[string]any, len(q))
	for f, targets := range q {
		channels := make(map[string]any, len(targets))
		for ch, vectors := range targets {
			channels[ChannelKey(ch)] = vectors
		}
		out[string(f)] = channels
	}
	return out
}

func (q TransitionQuery) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Document())
}

func (q *TransitionQuery) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTransitionQuery(raw)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
