package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "helpdesk_ws_sessions",
			Help: "Websocket connections currently open, authenticated or not.",
		},
	)
	wsAuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_ws_auth_failures_total",
			Help: "Credential frames rejected as expired or malformed.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsSessions, wsAuthFailures)
}

func incSessions() {
	wsSessions.Inc()
}

func decSessions() {
	wsSessions.Dec()
}

func incAuthFailures() {
	wsAuthFailures.Inc()
}
