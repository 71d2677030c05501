package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	notificationsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_notifications_delivered_total",
			Help: "Notifications pushed onto a live ticket connection.",
		},
	)
	notificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_notifications_dropped_total",
			Help: "Notifications dropped because no live connection was registered or the write failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(notificationsDelivered, notificationsDropped)
}

func incDelivered() {
	notificationsDelivered.Inc()
}

func incDropped() {
	notificationsDropped.Inc()
}
