package relay

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeForwarded      = "forwarded"
	outcomeTransportFault = "transport_fault"
	outcomeBadRequest     = "bad_request"
)

// Metrics holds the relay's Prometheus collectors.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentdeck_relay_requests_total",
				Help: "Token validation requests handled by the relay, by outcome",
			},
			[]string{"outcome"},
		),
	}
	registry.MustRegister(m.RequestsTotal)
	return m
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}
