package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/mrsim/internal/config"
	"github.com/aretw0/mrsim/internal/presentation/graph"
	"github.com/aretw0/mrsim/internal/presentation/report"
)

// Simulate runs the document in opts.File and writes the result to w.
func Simulate(ctx context.Context, opts Options, w io.Writer) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	sim := s.doc.Simulation()
	sim.Key = opts.StoreKey
	res, err := s.simulator.Run(sc, sim)
	if err != nil {
		if sig := sc.Signal(); sig != nil {
			return fmt.Errorf("interrupted by %v: %w", sig, err)
		}
		return err
	}

	switch opts.Output {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case OutputCSV:
		return report.WriteCSV(w, res.Spectrum)
	case OutputText, "":
		md := report.Summary(res)
		if opts.StoreKey != "" {
			md += fmt.Sprintf("\nStored as `%s`.\n", opts.StoreKey)
		}
		return writeMarkdown(w, md)
	}
	return fmt.Errorf("unknown output format %q, expected text, json or csv", opts.Output)
}

// Transitions resolves and prints the pathways of the document in opts.File.
func Transitions(ctx context.Context, opts Options, w io.Writer) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.doc.Method.Validate(); err != nil {
		return fmt.Errorf("method: %w", err)
	}
	systems, err := s.simulator.Transitions(ctx, s.doc.Method, s.doc.SpinSystems)
	if err != nil {
		return err
	}

	switch opts.Output {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(systems)
	case OutputMermaid:
		for _, sp := range systems {
			fmt.Fprintf(w, "%%%% spin system %d %s\n", sp.System, sp.Name)
			io.WriteString(w, graph.GenerateMermaid(sp.Pathways))
		}
		return nil
	case OutputText, "":
		return writeMarkdown(w, report.Pathways(systems))
	}
	return fmt.Errorf("unknown output format %q, expected text, json or mermaid", opts.Output)
}

// Validate checks that the document in file parses and describes a
// runnable simulation.
func Validate(file string, w io.Writer) error {
	doc, err := config.Load(file)
	if err != nil {
		return err
	}
	if _, err := doc.Settings.Options(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := doc.Simulation().Validate(); err != nil {
		return err
	}
	printSystemMessage(w, "%s is valid: %d spin systems, %d spectral dimensions.",
		file, len(doc.SpinSystems), len(doc.Method.SpectralDimensions))
	return nil
}
