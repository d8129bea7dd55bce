package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/mrsim/pkg/domain"
)

// Metrics holds the simulator collectors and the registry they live in.
type Metrics struct {
	registry    *prometheus.Registry
	simulations *prometheus.CounterVec
	duration    prometheus.Histogram
	faults      prometheus.Counter
	pathways    prometheus.Counter
	diagnostics *prometheus.CounterVec
}

// NewMetrics registers the simulator collectors, plus Go runtime and
// process collectors, in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrsim_simulations_total",
				Help: "Total number of simulation runs by outcome",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mrsim_simulation_duration_seconds",
			Help:    "Wall time of simulation runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrsim_numeric_faults_total",
			Help: "Contributions skipped because their frequency was not finite",
		}),
		pathways: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrsim_pathways_total",
			Help: "Transition pathways resolved across all runs",
		}),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrsim_diagnostics_total",
				Help: "Transition queries that resolved to nothing, by kind",
			},
			[]string{"kind"},
		),
	}
	m.registry.MustRegister(
		m.simulations, m.duration, m.faults, m.pathways, m.diagnostics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record run outcomes.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.simulations.WithLabelValues(status).Inc()
			m.duration.Observe(e.Duration.Seconds())
			m.faults.Add(float64(e.Faults))
			m.pathways.Add(float64(e.Pathways))
		},
		OnDiagnostic: func(_ context.Context, e *domain.DiagnosticEvent) {
			m.diagnostics.WithLabelValues(e.Kind).Inc()
		},
	}
}

// Chain combines hooks so each callback runs every non-nil handler in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunEnd != nil {
					h.OnRunEnd(ctx, e)
				}
			}
		},
		OnSystemDone: func(ctx context.Context, e *domain.SystemEvent) {
			for _, h := range hooks {
				if h.OnSystemDone != nil {
					h.OnSystemDone(ctx, e)
				}
			}
		},
		OnDiagnostic: func(ctx context.Context, e *domain.DiagnosticEvent) {
			for _, h := range hooks {
				if h.OnDiagnostic != nil {
					h.OnDiagnostic(ctx, e)
				}
			}
		},
	}
}
