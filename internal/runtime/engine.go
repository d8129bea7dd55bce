package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	goruntime "runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/mrsim/internal/rotation"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
	"github.com/aretw0/mrsim/pkg/orientation"
	"github.com/aretw0/mrsim/pkg/pathway"
)

// DefaultChunkSize is the number of orientations in one unit of work.
const DefaultChunkSize = 256

// Config tunes the frequency engine.
type Config struct {
	// Workers is the number of goroutines. Zero uses the CPU count.
	Workers int
	// Sidebands is the number of spinning sidebands computed for
	// single-dimension methods. Values below 2 deposit only the centreband.
	Sidebands int
	Binning   Binning
	// ChunkSize is the number of orientations per unit of work.
	ChunkSize int
}

// SystemJob is a spin system with its resolved pathways.
type SystemJob struct {
	System   domain.SpinSystem
	Pathways []pathway.Pathway
}

// Job is one simulation: a method, an orientation grid and the systems to average.
type Job struct {
	Method  method.Method
	Grid    *orientation.Grid
	Systems []SystemJob
}

// Result is the output of a run.
type Result struct {
	Spectrum *domain.Spectrum
	// Faults counts (pathway, orientation) contributions skipped because
	// their frequency was not finite.
	Faults   int
	Duration time.Duration
}

// Engine is the orientation-averaging frequency engine.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = goruntime.NumCPU()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cfg: cfg, logger: logger}
}

// eventModel is an event reduced to what the frequency evaluation needs.
type eventModel struct {
	dim      int
	fraction float64
	rotor    rotation.Rotor
	// rotorFrequency is zero for a static event.
	rotorFrequency float64
	samples        int
	fluxDensity    float64
}

// preparedPath stores the level index of every site for every event.
type preparedPath struct {
	weight float64
	// levels[event][site] = [initial, final]
	levels [][][2]int
}

type preparedSystem struct {
	fraction float64
	sites    []siteModel
	// larmor[event][site]
	larmor [][]float64
	paths  []preparedPath
}

type unit struct {
	system int
	nodes  []orientation.Node
}

// Run averages every pathway of every system over the grid and bins the
// result. Work is split into (system, orientation chunk) units assigned to
// workers round-robin; each worker owns an accumulator and the accumulators
// are summed in worker order, so a fixed worker count gives reproducible output.
func (e *Engine) Run(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()
	if job.Grid == nil {
		return nil, fmt.Errorf("runtime: nil orientation grid")
	}
	axes := job.Method.Axes()
	events, sidebandMode, samples := e.prepareEvents(job.Method)

	var systems []preparedSystem
	for i, sj := range job.Systems {
		if sj.System.Abundance <= 0 || len(sj.Pathways) == 0 {
			continue
		}
		ps, err := prepareSystem(sj, events)
		if err != nil {
			return nil, fmt.Errorf("system %d: %w", i, err)
		}
		systems = append(systems, ps)
	}

	var units []unit
	chunks := job.Grid.Chunks(e.cfg.ChunkSize)
	for si := range systems {
		for _, c := range chunks {
			units = append(units, unit{system: si, nodes: c})
		}
	}

	workers := min(e.cfg.Workers, max(len(units), 1))
	accs := make([]*accumulator, workers)
	faults := make([]int, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		accs[w] = newAccumulator(axes, e.cfg.Binning)
		g.Go(func() error {
			wk := newWorker(accs[w], events, sidebandMode, samples, e.cfg.Sidebands)
			for u := w; u < len(units); u += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				wk.process(systems[units[u].system], units[u].nodes)
			}
			faults[w] = wk.faults
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newAccumulator(axes, e.cfg.Binning)
	res := &Result{Spectrum: &domain.Spectrum{Axes: total.axes, Data: total.data}}
	for w := range accs {
		total.add(accs[w])
		res.Faults += faults[w]
	}
	res.Duration = time.Since(start)

	if res.Faults > 0 {
		e.logger.Warn("skipped non-finite frequencies", "faults", res.Faults)
	}
	e.logger.Debug("engine run complete",
		"systems", len(systems), "units", len(units), "workers", workers,
		"sidebands", sidebandMode, "duration", res.Duration)
	return res, nil
}

// prepareEvents flattens the method's events. Sidebands are resolved only
// for spinning single-dimension methods when more than one is requested.
func (e *Engine) prepareEvents(m method.Method) ([]eventModel, bool, int) {
	var events []eventModel
	spinning := true
	for di, dim := range m.SpectralDimensions {
		for _, ev := range dim.Events {
			em := eventModel{
				dim:         di,
				fraction:    ev.Fraction,
				rotor:       rotation.NewRotor(ev.EffectiveRotorAngle()),
				fluxDensity: ev.MagneticFluxDensity,
				samples:     1,
			}
			if ev.Spinning() {
				em.rotorFrequency = ev.RotorFrequency
			} else {
				spinning = false
			}
			events = append(events, em)
		}
	}

	sidebandMode := spinning && len(events) > 0 && len(m.SpectralDimensions) == 1 && e.cfg.Sidebands > 1
	samples := minRotorSamples
	if sidebandMode {
		samples = max(e.cfg.Sidebands, minRotorSamples)
	}
	for i := range events {
		if events[i].rotorFrequency > 0 {
			events[i].samples = samples
		}
	}
	return events, sidebandMode, samples
}

func prepareSystem(sj SystemJob, events []eventModel) (preparedSystem, error) {
	ps := preparedSystem{fraction: sj.System.Fraction()}
	frame := crystalFrame(sj.System)
	for _, site := range sj.System.Sites {
		m, err := newSiteModel(site, frame)
		if err != nil {
			return ps, err
		}
		ps.sites = append(ps.sites, m)
	}

	ps.larmor = make([][]float64, len(events))
	for ei, ev := range events {
		ps.larmor[ei] = make([]float64, len(ps.sites))
		for si, site := range ps.sites {
			ps.larmor[ei][si] = site.larmor(ev.fluxDensity)
		}
	}

	for pi, p := range sj.Pathways {
		if len(p.Transitions) != len(events) {
			return ps, fmt.Errorf("pathway %d has %d transitions for %d events", pi, len(p.Transitions), len(events))
		}
		pp := preparedPath{weight: p.Weight, levels: make([][][2]int, len(events))}
		for ei, t := range p.Transitions {
			if t.Sites() != len(ps.sites) {
				return ps, fmt.Errorf("pathway %d: %w", pi, domain.ErrLengthMismatch)
			}
			initial, final := t.Initial(), t.Final()
			pp.levels[ei] = make([][2]int, len(ps.sites))
			for si, site := range ps.sites {
				li := int(math.Round(initial[si] + site.spin))
				lf := int(math.Round(final[si] + site.spin))
				if li < 0 || li >= site.levels || lf < 0 || lf >= site.levels {
					return ps, fmt.Errorf("pathway %d: state outside spin %g manifold", pi, site.spin)
				}
				pp.levels[ei][si] = [2]int{li, lf}
			}
		}
		ps.paths = append(ps.paths, pp)
	}
	return ps, nil
}
