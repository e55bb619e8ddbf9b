package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the analysis engine.
type Metrics struct {
	// Geometry-store query latencies by layer
	LayerQueryLatency *prometheus.HistogramVec

	// Layers dropped from an analysis by layer and reason
	DegradedLayers *prometheus.CounterVec

	// Completed analyses by pathway and classification rule
	AnalysisOutcome *prometheus.CounterVec

	// Overall analysis latency including layer queries
	AnalyzeLatency prometheus.Histogram
}

// New creates a new Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		LayerQueryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seia_layer_query_duration_seconds",
			Help:    "Duration of geometry-store queries by layer",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"layer"}),

		DegradedLayers: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "seia_degraded_layers_total",
			Help: "Total layers excluded from an analysis by reason",
		}, []string{"layer", "reason"}), // reason: "timeout", "query_error", "circuit_open"

		AnalysisOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "seia_analyses_total",
			Help: "Total completed analyses by pathway and classification rule",
		}, []string{"pathway", "rule"}),

		AnalyzeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "seia_analyze_duration_seconds",
			Help:    "Duration of full analyses including layer queries",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveLayerQuery records the duration of one geometry-store query.
func (m *Metrics) ObserveLayerQuery(layer string, d time.Duration) {
	if m != nil {
		m.LayerQueryLatency.WithLabelValues(layer).Observe(d.Seconds())
	}
}

// IncrementDegraded records a layer excluded from an analysis.
func (m *Metrics) IncrementDegraded(layer, reason string) {
	if m != nil {
		m.DegradedLayers.WithLabelValues(layer, reason).Inc()
	}
}

// IncrementOutcome records a completed analysis.
func (m *Metrics) IncrementOutcome(pathway, rule string) {
	if m != nil {
		m.AnalysisOutcome.WithLabelValues(pathway, rule).Inc()
	}
}

// ObserveAnalyzeLatency records the total analysis duration.
func (m *Metrics) ObserveAnalyzeLatency(d time.Duration) {
	if m != nil {
		m.AnalyzeLatency.Observe(d.Seconds())
	}
}
