// Package metrics exposes Prometheus instrumentation for connector routing.
//
// Routing implements routing.Observer so it can be attached to a Router
// directly. Metrics register on an injected Registerer, which keeps tests
// isolated from the global default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric when no namespace is configured.
const DefaultNamespace = "cardlink"

const routingSubsystem = "routing"

// Routing holds the routing metrics.
type Routing struct {
	// RoutesTotal counts resolved connectors.
	// Labels: strategy (straight, single-bend, double-bend, detour, fallback, direct)
	RoutesTotal *prometheus.CounterVec

	// RejectedTotal counts candidate shapes that were blocked or inapplicable.
	RejectedTotal prometheus.Counter

	// AttemptsPerRoute tracks how many candidates a route evaluated.
	AttemptsPerRoute prometheus.Histogram

	// DurationSeconds measures routing latency.
	// Labels: strategy
	DurationSeconds *prometheus.HistogramVec
}

// NewRouting creates routing metrics and registers them on reg. A nil reg
// leaves them unregistered.
func NewRouting(namespace string, reg prometheus.Registerer) (*Routing, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Routing{
		RoutesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: routingSubsystem,
			Name:      "routes_total",
			Help:      "Total connectors routed by resolving strategy",
		}, []string{"strategy"}),
		RejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: routingSubsystem,
			Name:      "rejected_candidates_total",
			Help:      "Total candidate shapes rejected while routing",
		}),
		AttemptsPerRoute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: routingSubsystem,
			Name:      "attempts_per_route",
			Help:      "Distribution of candidate shapes evaluated per route",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 24},
		}),
		DurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: routingSubsystem,
			Name:      "duration_seconds",
			Help:      "Routing latency in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"strategy"}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Routing) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.RoutesTotal, m.RejectedTotal, m.AttemptsPerRoute, m.DurationSeconds}
}

// ObserveRoute records one routing call.
func (m *Routing) ObserveRoute(strategy string, attempts, rejected int, elapsed time.Duration) {
	m.RoutesTotal.WithLabelValues(strategy).Inc()
	m.RejectedTotal.Add(float64(rejected))
	m.AttemptsPerRoute.Observe(float64(attempts))
	m.DurationSeconds.WithLabelValues(strategy).Observe(elapsed.Seconds())
}
