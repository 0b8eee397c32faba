package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	runs         *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	pollAttempts prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchen",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kitchen",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs from trigger to normalized result.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 180},
		}, []string{"kind"}),
		pollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kitchen",
			Subsystem: "pipeline",
			Name:      "poll_attempts",
			Help:      "Status polls needed before an execution ended.",
			Buckets:   prometheus.LinearBuckets(1, 5, 12),
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.pollAttempts)
	return m
}

func (m *Metrics) observeRun(kind Kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(kind), outcome).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (m *Metrics) observePolls(attempts int) {
	if m == nil {
		return
	}
	m.pollAttempts.Observe(float64(attempts))
}
