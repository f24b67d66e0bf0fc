// Package metrics exposes prometheus instrumentation for the analytics
// engine: query and mutation counters, latency histograms, and graph size
// gauges.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all engine metrics backed by a dedicated prometheus
// registry, so tests and embedders never collide on the global default.
type Registry struct {
	registry *prometheus.Registry

	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	MutationsTotal *prometheus.CounterVec

	RecalculationsTotal   prometheus.Counter
	RecalculationDuration prometheus.Histogram

	GraphNodes prometheus.Gauge
	GraphFlows prometheus.Gauge
}

// NewRegistry creates a registry with all engine metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.QueriesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flownet_queries_total",
			Help: "Total number of analytic queries executed",
		},
		[]string{"query_type", "status"},
	)

	r.QueryDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flownet_query_duration_seconds",
			Help:    "Analytic query duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"query_type"},
	)

	r.MutationsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flownet_mutations_total",
			Help: "Total number of graph mutations",
		},
		[]string{"operation", "status"},
	)

	r.RecalculationsTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "flownet_recalculations_total",
			Help: "Total number of centrality/keyman recomputations",
		},
	)

	r.RecalculationDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flownet_recalculation_duration_seconds",
			Help:    "Centrality/keyman recomputation duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.GraphNodes = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "flownet_graph_nodes",
			Help: "Current number of nodes in the graph",
		},
	)

	r.GraphFlows = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "flownet_graph_flows",
			Help: "Current number of flows in the graph",
		},
	)

	return r
}

// Gatherer exposes the underlying registry for scraping or test assertions.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordQuery records an analytic query with its duration.
func (r *Registry) RecordQuery(queryType, status string, duration time.Duration) {
	r.QueriesTotal.WithLabelValues(queryType, status).Inc()
	r.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
}

// RecordMutation records a graph mutation.
func (r *Registry) RecordMutation(operation, status string) {
	r.MutationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRecalculation records one centrality/keyman recomputation.
func (r *Registry) RecordRecalculation(duration time.Duration) {
	r.RecalculationsTotal.Inc()
	r.RecalculationDuration.Observe(duration.Seconds())
}

// SetGraphSize updates the node and flow gauges.
func (r *Registry) SetGraphSize(nodes, flows int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphFlows.Set(float64(flows))
}
