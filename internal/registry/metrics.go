package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	liveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "helpdesk_live_connections",
			Help: "Current number of registered live ticket connections.",
		},
	)
	replacedConnections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_live_connections_replaced_total",
			Help: "Registrations that displaced an existing connection for the same ticket.",
		},
	)
)

func init() {
	prometheus.MustRegister(liveConnections, replacedConnections)
}

func setLiveConnections(count int) {
	liveConnections.Set(float64(count))
}

func incReplaced() {
	replacedConnections.Inc()
}
