package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "onejourney"

// DomainMetrics exposes business counters in Prometheus format.
// Every Record method is safe on a nil receiver so services can run without metrics.
type DomainMetrics struct {
	routeFallbacks      *prometheus.CounterVec
	trips               *prometheus.CounterVec
	walletRejections    *prometheus.CounterVec
	topUps              prometheus.Counter
	walletBalance       prometheus.Gauge
	challengesCompleted *prometheus.CounterVec
	bonusCredited       prometheus.Counter
	assistantFallbacks  *prometheus.CounterVec
}

// NewDomainMetrics creates the collectors and registers them with reg.
func NewDomainMetrics(reg prometheus.Registerer) (*DomainMetrics, error) {
	m := &DomainMetrics{
		routeFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_fallbacks_total",
			Help:      "Trip plans served from synthetic candidates, by reason.",
		}, []string{"reason"}),
		trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_total",
			Help:      "Trips paid from the wallet, by transport mode.",
		}, []string{"mode"}),
		walletRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_rejections_total",
			Help:      "Rejected wallet operations, by reason.",
		}, []string{"reason"}),
		topUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_topups_total",
			Help:      "Successful wallet top-ups.",
		}),
		walletBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wallet_balance",
			Help:      "Current wallet balance in currency units.",
		}),
		challengesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_completed_total",
			Help:      "Weekly challenges completed, by challenge id.",
		}, []string{"challenge"}),
		bonusCredited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenge_bonus_credited_total",
			Help:      "Currency units credited as challenge bonuses.",
		}),
		assistantFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_fallbacks_total",
			Help:      "Assistant replies replaced by a fallback message, by reason.",
		}, []string{"reason"}),
	}

	collectors := []prometheus.Collector{
		m.routeFallbacks,
		m.trips,
		m.walletRejections,
		m.topUps,
		m.walletBalance,
		m.challengesCompleted,
		m.bonusCredited,
		m.assistantFallbacks,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordRouteFallback counts a trip plan served from synthetic data.
func (m *DomainMetrics) RecordRouteFallback(reason string) {
	if m == nil {
		return
	}
	m.routeFallbacks.WithLabelValues(reason).Inc()
}

// RecordTrip counts a paid trip and updates the balance gauge.
func (m *DomainMetrics) RecordTrip(mode string, balance int) {
	if m == nil {
		return
	}
	m.trips.WithLabelValues(mode).Inc()
	m.walletBalance.Set(float64(balance))
}

// RecordWalletRejection counts a rejected wallet operation.
func (m *DomainMetrics) RecordWalletRejection(reason string) {
	if m == nil {
		return
	}
	m.walletRejections.WithLabelValues(reason).Inc()
}

// RecordTopUp counts a top-up and updates the balance gauge.
func (m *DomainMetrics) RecordTopUp(balance int) {
	if m == nil {
		return
	}
	m.topUps.Inc()
	m.walletBalance.Set(float64(balance))
}

// RecordChallengeCompleted counts a completion and the bonus it paid.
func (m *DomainMetrics) RecordChallengeCompleted(challengeID string, bonus int) {
	if m == nil {
		return
	}
	m.challengesCompleted.WithLabelValues(challengeID).Inc()
	if bonus > 0 {
		m.bonusCredited.Add(float64(bonus))
	}
}

// RecordAssistantFallback counts an assistant reply replaced by a fallback.
func (m *DomainMetrics) RecordAssistantFallback(reason string) {
	if m == nil {
		return
	}
	m.assistantFallbacks.WithLabelValues(reason).Inc()
}

// SetBalance updates the balance gauge.
func (m *DomainMetrics) SetBalance(balance int) {
	if m == nil {
		return
	}
	m.walletBalance.Set(float64(balance))
}
