// Package metrics provides the centralized Prometheus metrics registry
// for the edge engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RatingUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "rating_updates_total",
		Help:      "Total number of rating updates applied",
	})
	ProjectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "projections_total",
		Help:      "Total number of spread projections generated",
	})
	EdgesEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "edges_evaluated_total",
		Help:      "Total number of edge evaluations performed",
	})
	EdgesQualifiedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "edges_qualified_total",
		Help:      "Total number of edges that qualified for a bet",
	})
	LeakageViolationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "leakage_violations_total",
		Help:      "Total number of temporal leakage violations detected",
	})
	SanityGateTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "sanity_gate_trips_total",
		Help:      "Total number of projections excluded by the sanity gate",
	})
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by decision",
	}, []string{"decision"})
	MissingInputWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "missing_input_warnings_total",
		Help:      "Total number of inputs degraded to neutral by kind",
	}, []string{"kind"})
)

// Gauge metrics
var (
	TrackedRatings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cfb_edge",
		Name:      "tracked_ratings",
		Help:      "Number of team-season ratings currently held",
	})
	CalibrationDrift = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cfb_edge",
		Name:      "calibration_drift",
		Help:      "Observed minus expected win rate per edge bucket",
	}, []string{"bucket"})
	LastBacktestROI = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cfb_edge",
		Name:      "last_backtest_roi",
		Help:      "ROI point estimate from the most recent backtest run",
	})
)

// Histogram metrics
var (
	EdgeEvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cfb_edge",
		Name:      "edge_evaluation_duration_seconds",
		Help:      "Duration of a single edge evaluation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cfb_edge",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RatingUpdatesTotal)
		registry.MustRegister(ProjectionsTotal)
		registry.MustRegister(EdgesEvaluatedTotal)
		registry.MustRegister(EdgesQualifiedTotal)
		registry.MustRegister(LeakageViolationsTotal)
		registry.MustRegister(SanityGateTripsTotal)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(MissingInputWarningsTotal)

		registry.MustRegister(TrackedRatings)
		registry.MustRegister(CalibrationDrift)
		registry.MustRegister(LastBacktestROI)

		registry.MustRegister(EdgeEvaluationDuration)
		registry.MustRegister(BacktestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordMissingInput records an input degraded to neutral.
func RecordMissingInput(kind string) {
	MissingInputWarningsTotal.WithLabelValues(kind).Inc()
}
