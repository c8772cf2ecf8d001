package client

import "github.com/prometheus/client_golang/prometheus"

// Metrics used in monitoring service.
var (
	callsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of successfully correlated rpc calls by method",
			Name:      "calls_completed",
			Namespace: "tendermintrpc",
		},
		[]string{"method"},
	)

	eventsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of events pushed by the server over websocket connections",
			Name:      "events_received",
			Namespace: "tendermintrpc",
		},
	)

	eventsUnroutable = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of pushed events dropped for lack of a matching local subscription",
			Name:      "events_unroutable",
			Namespace: "tendermintrpc",
		},
	)

	subscriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of currently live local subscription handles",
			Name:      "subscriptions_active",
			Namespace: "tendermintrpc",
		},
	)
)

func init() {
	prometheus.MustRegister(
		callsCompleted,
		eventsReceived,
		eventsUnroutable,
		subscriptionsActive,
	)
}
