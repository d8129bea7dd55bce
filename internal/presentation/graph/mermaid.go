package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/pathway"
)

// GenerateMermaid produces a Mermaid flowchart of the energy levels visited
// by a set of pathways. Each Zeeman product state is a node and each
// transition an edge labelled with the events that use it:
// - Pathway start: ((Circle))
// - Other states: [Rectangle]
// Multi-event pathways chain their transitions in event order.
func GenerateMermaid(pathways []pathway.Pathway) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	type edge struct{ from, to string }
	labels := map[string]string{}
	starts := map[string]bool{}
	events := map[edge]map[int]bool{}
	var order []edge

	for _, p := range pathways {
		for j, t := range p.Transitions {
			from, to := stateID(t.Initial()), stateID(t.Final())
			labels[from] = formatKet(t.Initial())
			labels[to] = formatKet(t.Final())
			if j == 0 {
				starts[from] = true
			}
			e := edge{from, to}
			if events[e] == nil {
				events[e] = map[int]bool{}
				order = append(order, e)
			}
			events[e][j] = true
		}
	}

	ids := make([]string, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		opener, closer := "[", "]"
		if starts[id] {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, labels[id], closer))
	}

	for _, e := range order {
		idx := make([]int, 0, len(events[e]))
		for j := range events[e] {
			idx = append(idx, j)
		}
		sort.Ints(idx)
		names := make([]string, len(idx))
		for i, j := range idx {
			names[i] = fmt.Sprintf("e%d", j)
		}
		arrow := fmt.Sprintf("-- \"%s\" -->", strings.Join(names, ", "))
		if e.from == e.to {
			// zero-quantum evolution on the same state
			arrow = fmt.Sprintf("-. \"%s\" .->", strings.Join(names, ", "))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", e.from, arrow, e.to))
	}
	return sb.String()
}

func formatKet(m []float64) string {
	t, err := domain.NewTransition(m, m)
	if err != nil {
		return fmt.Sprint(m)
	}
	ket, _, _ := strings.Cut(t.String(), " → ")
	return ket
}

// stateID builds a Mermaid-safe identifier, e.g. [-1/2, 3/2] -> m_n1_3.
func stateID(m []float64) string {
	parts := make([]string, len(m))
	for i, v := range m {
		twice := int(2 * v)
		if twice < 0 {
			parts[i] = fmt.Sprintf("n%d", -twice)
		} else {
			parts[i] = fmt.Sprintf("%d", twice)
		}
	}
	return "m_" + strings.Join(parts, "_")
}
