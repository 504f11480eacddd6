package completion

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded by Metrics.
const (
	OutcomeCommand = "command" // first word, completed from PATH and registered trees
	OutcomeTree    = "tree"    // handled by the command's argument tree
	OutcomeFiles   = "files"   // fell back to file completion
)

// Metrics counts completion requests.
type Metrics struct {
	requests   *prometheus.CounterVec
	candidates prometheus.Histogram
}

// NewMetrics creates the completion metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clink_completion_requests_total",
				Help: "Completion requests by outcome.",
			},
			[]string{"outcome"},
		),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clink_completion_candidates",
			Help:    "Number of candidates returned per request.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}
	reg.MustRegister(m.requests, m.candidates)
	return m
}

func (m *Metrics) observe(outcome string, n int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.candidates.Observe(float64(n))
}
