package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the engine.
type Metrics struct {
	evaluations      *prometheus.CounterVec
	vetoes           *prometheus.CounterVec
	clampEvents      *prometheus.CounterVec
	evaluationScores *prometheus.HistogramVec
	duration         *prometheus.HistogramVec
}

// NewMetrics creates engine collectors registered against reg. A nil reg
// uses the default registerer; tests pass their own registry so repeated
// engine construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ganymede_evaluations_total",
				Help: "Total unit evaluations by role and outcome (fused, vetoed, rejected)",
			},
			[]string{"role", "outcome"},
		),

		vetoes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ganymede_vetoes_total",
				Help: "Total winning vetoes by originating layer",
			},
			[]string{"layer"},
		),

		clampEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ganymede_clamp_events_total",
				Help: "Total bounded-product clamp events by pipeline stage",
			},
			[]string{"stage"},
		),

		evaluationScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ganymede_fused_score",
				Help:    "Distribution of fused scores by role",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 to 1.0
			},
			[]string{"role"},
		),

		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ganymede_evaluation_duration_seconds",
				Help:    "Duration of unit evaluations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"role"},
		),
	}
}

// RecordEvaluation records one evaluation with its outcome.
func (m *Metrics) RecordEvaluation(role, outcome string, seconds float64) {
	m.evaluations.WithLabelValues(role, outcome).Inc()
	m.duration.WithLabelValues(role).Observe(seconds)
}

// RecordVeto records a winning veto.
func (m *Metrics) RecordVeto(layer string) {
	m.vetoes.WithLabelValues(layer).Inc()
}

// RecordClamp records a bounded-product clamp.
func (m *Metrics) RecordClamp(stage string) {
	m.clampEvents.WithLabelValues(stage).Inc()
}

// RecordScore records a fused score.
func (m *Metrics) RecordScore(role string, score float64) {
	m.evaluationScores.WithLabelValues(role).Observe(score)
}
