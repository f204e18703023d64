package probe

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/waftester/mutaprobe/pkg/defaults"
)

// Outcome labels for probesTotal.
const (
	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

// Metrics holds the dispatcher's Prometheus collectors.
type Metrics struct {
	probesTotal      *prometheus.CounterVec
	probeDuration    prometheus.Histogram
	resultsDelivered prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: defaults.ToolName,
				Name:      "probes_total",
				Help:      "Total number of mutants handled by the dispatcher, by outcome",
			},
			[]string{"outcome"},
		),
		probeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: defaults.ToolName,
				Name:      "probe_duration_seconds",
				Help:      "Round-trip time of successful probes",
				Buckets:   prometheus.DefBuckets,
			},
		),
		resultsDelivered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: defaults.ToolName,
				Name:      "results_delivered_total",
				Help:      "Total number of responses delivered to analyzers",
			},
		),
	}

	collectors := []prometheus.Collector{m.probesTotal, m.probeDuration, m.resultsDelivered}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeSent(seconds float64) {
	if m == nil {
		return
	}
	m.probesTotal.WithLabelValues(outcomeSent).Inc()
	m.probeDuration.Observe(seconds)
}

func (m *Metrics) observeFailed() {
	if m == nil {
		return
	}
	m.probesTotal.WithLabelValues(outcomeFailed).Inc()
}

func (m *Metrics) observeSkipped() {
	if m == nil {
		return
	}
	m.probesTotal.WithLabelValues(outcomeSkipped).Inc()
}

func (m *Metrics) observeDelivered() {
	if m == nil {
		return
	}
	m.resultsDelivered.Inc()
}
