package bisect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a bisection, used as the "result" label.
const (
	OutcomeFound    = "found"
	OutcomeNoChange = "no_change"
	OutcomeError    = "error"
)

// Metrics are the Prometheus metrics of the bisection engine.
type Metrics struct {
	// CommitRuns counts runs of the step pipeline on a commit.
	CommitRuns prometheus.Counter

	// Rounds counts iterations of the endpoint and narrowing loops.
	Rounds *prometheus.CounterVec

	// Bisections counts finished bisections by result.
	Bisections *prometheus.CounterVec

	// RangeSize is the number of commits resolved per bisection.
	RangeSize prometheus.Histogram
}

// NewMetrics registers the engine metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CommitRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: "bisection",
			Name:      "commit_runs_total",
			Help:      "Number of times the step pipeline ran on a commit.",
		}),
		Rounds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bisection",
			Name:      "rounds_total",
			Help:      "Iterations of the search loops.",
		}, []string{"phase"}),
		Bisections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bisection",
			Name:      "bisections_total",
			Help:      "Finished bisections by result.",
		}, []string{"result"}),
		RangeSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bisection",
			Name:      "range_size_commits",
			Help:      "Number of commits in a bisected range.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
		}),
	}
}

func (m *Metrics) commitRun() {
	if m != nil {
		m.CommitRuns.Inc()
	}
}

func (m *Metrics) round(phase string) {
	if m != nil {
		m.Rounds.WithLabelValues(phase).Inc()
	}
}

func (m *Metrics) rangeSize(n int) {
	if m != nil {
		m.RangeSize.Observe(float64(n))
	}
}

func (m *Metrics) finished(result string) {
	if m != nil {
		m.Bisections.WithLabelValues(result).Inc()
	}
}
