package mrsim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/mrsim/internal/runtime"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/method"
	"github.com/aretw0/mrsim/pkg/orientation"
	"github.com/aretw0/mrsim/pkg/pathway"
	"github.com/aretw0/mrsim/pkg/ports"
	"github.com/aretw0/mrsim/pkg/postsim"
	"github.com/aretw0/mrsim/pkg/schema"
)

// Binning selects how frequencies are deposited into spectral bins.
type Binning = runtime.Binning

const (
	// BinLinear splits a deposit between the two nearest bins.
	BinLinear = runtime.BinLinear
	// BinNearest puts a deposit into the nearest bin.
	BinNearest = runtime.BinNearest
)

// ParseBinning parses "linear" or "nearest".
func ParseBinning(s string) (Binning, error) { return runtime.ParseBinning(s) }

// lockTTL bounds how long a stored run holds its key lock.
const lockTTL = 5 * time.Minute

// Simulator is the high-level entry point of the library. It resolves
// transition pathways for each spin system and averages their frequencies
// over an orientation grid.
type Simulator struct {
	density   int
	volume    orientation.Volume
	workers   int
	sidebands int
	binning   Binning
	hooks     domain.LifecycleHooks
	store     ports.SpectrumStore
	locker    ports.DistributedLocker
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Simulator.
type Option func(*Simulator)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithWorkers sets the number of engine goroutines. Zero uses the CPU count.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		s.workers = n
	}
}

// WithIntegrationDensity sets the orientation grid density (default 70).
func WithIntegrationDensity(density int) Option {
	return func(s *Simulator) {
		s.density = density
	}
}

// WithIntegrationVolume selects the averaged portion of the sphere.
func WithIntegrationVolume(v orientation.Volume) Option {
	return func(s *Simulator) {
		s.volume = v
	}
}

// WithSidebands sets the number of spinning sidebands evaluated for
// single-dimension methods (default 64).
func WithSidebands(n int) Option {
	return func(s *Simulator) {
		s.sidebands = n
	}
}

// WithBinning selects the binning scheme.
func WithBinning(b Binning) Option {
	return func(s *Simulator) {
		s.binning = b
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulator) {
		s.hooks = hooks
	}
}

// WithStore persists the spectrum of every run that names a key.
func WithStore(store ports.SpectrumStore) Option {
	return func(s *Simulator) {
		s.store = store
	}
}

// WithLocker serialises stored runs that share a key.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Simulator) {
		s.locker = locker
	}
}

// DefaultSidebands is the number of sidebands evaluated without WithSidebands.
const DefaultSidebands = 64

// New creates a Simulator.
func New(opts ...Option) (*Simulator, error) {
	s := &Simulator{
		density:   orientation.DefaultDensity,
		volume:    orientation.Octant,
		sidebands: DefaultSidebands,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.density <= 0 {
		return nil, fmt.Errorf("%w: %d", orientation.ErrInvalidDensity, s.density)
	}
	if s.workers < 0 || s.sidebands < 0 {
		return nil, errors.New("workers and sidebands must not be negative")
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// Store returns the configured spectrum store, or nil.
func (s *Simulator) Store() ports.SpectrumStore { return s.store }

// Simulation is one request: a method applied to a set of spin systems.
type Simulation struct {
	Method      method.Method       `json:"method"`
	SpinSystems []domain.SpinSystem `json:"spin_systems"`
	// PostSimulation, when set, is applied to the averaged spectrum.
	PostSimulation *postsim.PostSimulator `json:"post_simulation,omitempty"`
	// Key stores the final spectrum when the Simulator has a store.
	Key string `json:"key,omitempty"`
}

// Validate checks the method and every spin system.
func (sim Simulation) Validate() error {
	var errs []error
	if err := sim.Method.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("method: %w", err))
	}
	for i, sys := range sim.SpinSystems {
		if err := sys.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("spin_systems[%d]: %w", i, err))
		}
	}
	if sim.PostSimulation != nil {
		if err := sim.PostSimulation.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("post_simulation: %w", err))
		}
	}
	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}

// SystemPathways lists the pathways resolved for one spin system.
type SystemPathways struct {
	System      int                   `json:"system"`
	Name        string                `json:"name,omitempty"`
	Pathways    []pathway.Pathway     `json:"pathways"`
	Diagnostics []*pathway.Diagnostic `json:"diagnostics,omitempty"`
}

// Result is the output of a run.
type Result struct {
	RunID string `json:"run_id"`
	// Spectrum is the final spectrum, after post-simulation if requested.
	Spectrum *domain.Spectrum `json:"spectrum"`
	// Raw is the averaged spectrum before post-simulation. It is the same
	// value as Spectrum when no post-simulation was requested.
	Raw      *domain.Spectrum `json:"-"`
	Systems  []SystemPathways `json:"systems"`
	Faults   int              `json:"faults"`
	Duration time.Duration    `json:"duration"`
}

// Pathways returns the total number of resolved pathways.
func (r *Result) Pathways() int {
	n := 0
	for _, sp := range r.Systems {
		n += len(sp.Pathways)
	}
	return n
}

// Transitions resolves the transition pathways of every spin system under
// the method without evaluating any frequency.
func (s *Simulator) Transitions(ctx context.Context, m method.Method, systems []domain.SpinSystem) ([]SystemPathways, error) {
	out := make([]SystemPathways, 0, len(systems))
	for i, sys := range systems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paths, diags, err := pathway.Assemble(m, sys)
		if err != nil {
			return nil, fmt.Errorf("spin_systems[%d]: %w", i, err)
		}
		out = append(out, SystemPathways{System: i, Name: sys.Name, Pathways: paths, Diagnostics: diags})
	}
	return out, nil
}

// Run validates sim, resolves pathways and averages their frequencies.
// Diagnostics from pathway resolution are reported on the result, never as
// errors. Non-finite frequencies are skipped and counted in Result.Faults.
func (s *Simulator) Run(ctx context.Context, sim Simulation) (res *Result, err error) {
	if err := sim.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With("run", runID, "method", sim.Method.Name)
	start := time.Now()

	if s.hooks.OnRunStart != nil {
		s.hooks.OnRunStart(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventRunStart, RunID: runID},
			Method:    sim.Method.Name,
			Systems:   len(sim.SpinSystems),
		})
	}
	defer func() {
		if s.hooks.OnRunEnd == nil {
			return
		}
		ev := &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunEnd, RunID: runID},
			Method:    sim.Method.Name,
			Systems:   len(sim.SpinSystems),
			Duration:  time.Since(start),
			Err:       err,
		}
		if res != nil {
			ev.Pathways = res.Pathways()
			ev.Faults = res.Faults
		}
		s.hooks.OnRunEnd(ctx, ev)
	}()

	if sim.Key != "" && s.store != nil && s.locker != nil {
		unlock, err := s.locker.Lock(ctx, sim.Key, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("locking %q: %w", sim.Key, err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				logger.Warn("failed to release lock", "key", sim.Key, "err", uerr)
			}
		}()
	}

	logger.Info("simulation started", "systems", len(sim.SpinSystems))

	systems, err := s.Transitions(ctx, sim.Method, sim.SpinSystems)
	if err != nil {
		return nil, err
	}
	jobs := make([]runtime.SystemJob, len(systems))
	for i, sp := range systems {
		jobs[i] = runtime.SystemJob{System: sim.SpinSystems[i], Pathways: sp.Pathways}
		s.report(ctx, logger, runID, sp)
	}

	volume := max(s.volume, runtime.RequiredVolume(sim.SpinSystems))
	if volume != s.volume {
		logger.Debug("integration volume widened for oriented tensors", "from", s.volume, "to", volume)
	}
	grid, err := orientation.NewGrid(s.density, volume)
	if err != nil {
		return nil, err
	}
	engine := runtime.NewEngine(runtime.Config{
		Workers:   s.workers,
		Sidebands: s.sidebands,
		Binning:   s.binning,
	}, logger)
	out, err := engine.Run(ctx, runtime.Job{Method: sim.Method, Grid: grid, Systems: jobs})
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}

	res = &Result{
		RunID:    runID,
		Raw:      out.Spectrum,
		Spectrum: out.Spectrum,
		Systems:  systems,
		Faults:   out.Faults,
	}
	if sim.PostSimulation != nil {
		processed, err := sim.PostSimulation.Apply(out.Spectrum)
		if err != nil {
			return nil, fmt.Errorf("post simulation: %w", err)
		}
		res.Spectrum = processed
	}

	if sim.Key != "" && s.store != nil {
		if err := s.store.Save(ctx, sim.Key, res.Spectrum); err != nil {
			return nil, fmt.Errorf("storing spectrum %q: %w", sim.Key, err)
		}
	}

	res.Duration = time.Since(start)
	logger.Info("simulation finished",
		"pathways", res.Pathways(), "faults", res.Faults, "duration", res.Duration)
	return res, nil
}

func (s *Simulator) report(ctx context.Context, logger *slog.Logger, runID string, sp SystemPathways) {
	for _, d := range sp.Diagnostics {
		logger.Warn("transition query resolved to nothing",
			"system", sp.System, "dimension", d.Dimension, "event", d.Event,
			"channel", method.ChannelKey(d.Channel), "kind", d.Kind(), "detail", d.Detail)
		if s.hooks.OnDiagnostic != nil {
			s.hooks.OnDiagnostic(ctx, &domain.DiagnosticEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDiagnostic, RunID: runID},
				System:    sp.System,
				Kind:      d.Kind(),
				Detail:    d.Error(),
			})
		}
	}
	if s.hooks.OnSystemDone != nil {
		s.hooks.OnSystemDone(ctx, &domain.SystemEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSystemDone, RunID: runID},
			System:    sp.System,
			Name:      sp.Name,
			Pathways:  len(sp.Pathways),
		})
	}
}
