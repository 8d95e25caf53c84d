package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)

// Exchange holds collectors for requests made to the exchange.
type Exchange struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewExchange creates the exchange collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewExchange(reg prometheus.Registerer) (*Exchange, error) {
	m := &Exchange{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinanalysis_exchange_requests_total",
				Help: "Exchange API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinanalysis_exchange_request_duration_seconds",
				Help:    "Exchange API request latency in seconds",
				Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one finished request. Safe on a nil receiver.
func (m *Exchange) Observe(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
	m.Duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
