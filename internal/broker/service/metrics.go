package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the broker's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	launches  *prometheus.CounterVec
	callbacks *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	fetches   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. sessionCount backs the
// smartbroker_sessions gauge.
func NewMetrics(reg prometheus.Registerer, sessionCount func() int) *Metrics {
	f := promauto.With(reg)

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "smartbroker",
		Name:      "sessions",
		Help:      "Number of sessions held in memory.",
	}, func() float64 { return float64(sessionCount()) })

	return &Metrics{
		launches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartbroker",
			Name:      "launches_total",
			Help:      "Launch requests by outcome.",
		}, []string{"outcome"}),
		callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartbroker",
			Name:      "callbacks_total",
			Help:      "Authorization callbacks by outcome.",
		}, []string{"outcome"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartbroker",
			Name:      "token_refreshes_total",
			Help:      "Refresh grant attempts by outcome.",
		}, []string{"outcome"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartbroker",
			Name:      "resource_fetches_total",
			Help:      "Protected resource fetches by resource type and outcome.",
		}, []string{"resource", "outcome"}),
	}
}

func (m *Metrics) launch(outcome string) {
	if m != nil {
		m.launches.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) callback(outcome string) {
	if m != nil {
		m.callbacks.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) refresh(outcome string) {
	if m != nil {
		m.refreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) fetch(resource string, kind OutcomeKind) {
	if m != nil {
		m.fetches.WithLabelValues(resource, kind.String()).Inc()
	}
}
