package worker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Event processing outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeMalformed = "malformed"
	OutcomeUnknown   = "unknown"
)

// Metrics exposes worker counters in Prometheus format. Methods are safe on a
// nil receiver.
type Metrics struct {
	eventsProcessed *prometheus.CounterVec
	digestTrips     prometheus.Gauge
	digestSpent     prometheus.Gauge
	digestsReported prometheus.Counter
}

// NewMetrics creates the worker collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onejourney",
			Subsystem: "worker",
			Name:      "events_processed_total",
			Help:      "Domain events received, by type and outcome.",
		}, []string{"type", "outcome"}),
		digestTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "onejourney",
			Subsystem: "worker",
			Name:      "digest_trips",
			Help:      "Trips counted in the last reported digest window.",
		}),
		digestSpent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "onejourney",
			Subsystem: "worker",
			Name:      "digest_spent",
			Help:      "Currency units spent in the last reported digest window.",
		}),
		digestsReported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "onejourney",
			Subsystem: "worker",
			Name:      "digests_reported_total",
			Help:      "Digest windows reported.",
		}),
	}

	for _, c := range []prometheus.Collector{m.eventsProcessed, m.digestTrips, m.digestSpent, m.digestsReported} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordEvent counts a processed event.
func (m *Metrics) RecordEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.eventsProcessed.WithLabelValues(eventType, outcome).Inc()
}

// RecordDigest publishes the totals of a reported window.
func (m *Metrics) RecordDigest(s DigestSnapshot) {
	if m == nil {
		return
	}
	m.digestTrips.Set(float64(s.Trips))
	m.digestSpent.Set(float64(s.Spent))
	m.digestsReported.Inc()
}
