package observability

import (
	"context"

	"github.com/aretw0/postman/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "postman"

// Metrics holds the collectors fed by activation hooks.
type Metrics struct {
	Activations     *prometheus.CounterVec
	ObservedNodes   prometheus.Histogram
	ChangedNodes    prometheus.Counter
	DirtyBoundaries prometheus.Counter
	OrphanedChanges prometheus.Counter
	PhaseDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.NewRegistry() in tests to stay off the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activations_total",
			Help:      "Activations by outcome (clean: nothing changed, dirty: at least one boundary marked).",
		}, []string{"outcome"}),
		ObservedNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "observed_nodes",
			Help:      "Number of observed nodes per activation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ChangedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changed_nodes_total",
			Help:      "Nodes whose state digest changed during a request.",
		}),
		DirtyBoundaries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dirty_boundaries_total",
			Help:      "Refresh boundaries marked for re-render.",
		}),
		OrphanedChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_changes_total",
			Help:      "Changed nodes with no enclosing boundary.",
		}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each hook.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"phase"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Activations,
			m.ObservedNodes,
			m.ChangedNodes,
			m.DirtyBoundaries,
			m.OrphanedChanges,
			m.PhaseDuration,
		)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnArmed: func(_ context.Context, e *domain.ArmEvent) {
			m.ObservedNodes.Observe(float64(e.Observed))
			m.PhaseDuration.WithLabelValues("arm").Observe(e.Duration.Seconds())
		},
		OnResolved: func(_ context.Context, r *domain.Report) {
			outcome := "dirty"
			if r.Clean() {
				outcome = "clean"
			}
			m.Activations.WithLabelValues(outcome).Inc()
			m.ChangedNodes.Add(float64(r.Changed))
			m.DirtyBoundaries.Add(float64(r.Dirty))
			m.OrphanedChanges.Add(float64(r.Orphaned))
			m.PhaseDuration.WithLabelValues("resolve").Observe(r.ResolveDuration.Seconds())
		},
	}
}
