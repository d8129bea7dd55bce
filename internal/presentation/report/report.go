// Package report renders simulation results as markdown and CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/pkg/domain"
)

// Pathways renders the resolved pathways of every spin system.
func Pathways(systems []mrsim.SystemPathways) string {
	var sb strings.Builder
	sb.WriteString("# Transition pathways\n\n")
	for _, sp := range systems {
		name := sp.Name
		if name == "" {
			name = fmt.Sprintf("spin system %d", sp.System)
		}
		fmt.Fprintf(&sb, "## %s\n\n", name)
		if len(sp.Pathways) == 0 {
			sb.WriteString("_No pathways._\n\n")
		} else {
			sb.WriteString("| # | Pathway | p | d | Weight |\n|---|---|---|---|---|\n")
			for i, p := range sp.Pathways {
				ps := make([]string, len(p.Transitions))
				ds := make([]string, len(p.Transitions))
				for j, t := range p.Transitions {
					ps[j] = ints(t.P())
					ds[j] = ints(t.D())
				}
				fmt.Fprintf(&sb, "| %d | %s | %s | %s | %g |\n", i, escape(p.String()),
					strings.Join(ps, " ⇒ "), strings.Join(ds, " ⇒ "), p.Weight)
			}
			sb.WriteString("\n")
		}
		for _, d := range sp.Diagnostics {
			fmt.Fprintf(&sb, "- **%s**: %s\n", d.Kind(), d.Error())
		}
		if len(sp.Diagnostics) > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Summary renders the run statistics and the peak of the spectrum.
func Summary(res *mrsim.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Simulation %s\n\n", res.RunID)
	fmt.Fprintf(&sb, "- Pathways: %d\n", res.Pathways())
	fmt.Fprintf(&sb, "- Numeric faults: %d\n", res.Faults)
	fmt.Fprintf(&sb, "- Duration: %s\n", res.Duration)
	if res.Spectrum == nil || len(res.Spectrum.Data) == 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, "- Integrated intensity: %.6g\n\n", res.Spectrum.Sum())

	peak, coords := Peak(res.Spectrum)
	sb.WriteString("| Dimension | Points | Width (Hz) | Offset (Hz) | Peak (Hz) |\n|---|---|---|---|---|\n")
	for d, a := range res.Spectrum.Axes {
		fmt.Fprintf(&sb, "| %d | %d | %g | %g | %.6g |\n", d, a.Count, a.SpectralWidth, a.ReferenceOffset, coords[d])
	}
	fmt.Fprintf(&sb, "\nPeak intensity %.6g at bin %d.\n", res.Spectrum.Data[peak], peak)
	return sb.String()
}

// Peak returns the flat index of the most intense bin and its frequency
// along every axis.
func Peak(s *domain.Spectrum) (int, []float64) {
	best := 0
	for i, v := range s.Data {
		if v > s.Data[best] {
			best = i
		}
	}
	coords := make([]float64, len(s.Axes))
	rest := best
	for d, stride := range s.Strides() {
		coords[d] = s.Axes[d].CoordinatesHz()[rest/stride]
		rest %= stride
	}
	return best, coords
}

// WriteCSV writes one row per bin: the frequency of each axis in Hz
// followed by the intensity.
func WriteCSV(w io.Writer, s *domain.Spectrum) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(s.Axes)+1)
	coords := make([][]float64, len(s.Axes))
	for d, a := range s.Axes {
		label := a.Label
		if label == "" {
			label = fmt.Sprintf("dim%d", d)
		}
		header = append(header, label+"_hz")
		coords[d] = a.CoordinatesHz()
	}
	header = append(header, "intensity")
	if err := cw.Write(header); err != nil {
		return err
	}

	strides := s.Strides()
	row := make([]string, len(s.Axes)+1)
	for i, v := range s.Data {
		rest := i
		for d, stride := range strides {
			row[d] = strconv.FormatFloat(coords[d][rest/stride], 'g', -1, 64)
			rest %= stride
		}
		row[len(s.Axes)] = strconv.FormatFloat(v, 'g', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ints(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func escape(s string) string { return strings.ReplaceAll(s, "|", "\\|") }
