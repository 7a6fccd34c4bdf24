package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatterly_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatterly_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatterly_active_connections",
			Help: "Currently attached WebSocket connections",
		},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatterly_events_received_total",
			Help: "Inbound events by kind",
		},
		[]string{"event"},
	)

	MessagesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatterly_messages_relayed_total",
			Help: "Messages persisted and fanned out",
		},
		[]string{"kind"}, // "send", "edit", "delete"
	)

	FanoutDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatterly_fanout_deliveries_total",
			Help: "Individual event deliveries to connections",
		},
	)

	OnlineIdentities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatterly_online_identities",
			Help: "Identities currently online",
		},
	)

	// AI relay metrics
	AIRelays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatterly_ai_relays_total",
			Help: "AI relay round trips by outcome",
		},
		[]string{"outcome"}, // "ok" or "fallback"
	)

	AIResponseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatterly_ai_response_duration_seconds",
			Help:    "AI responder round-trip duration",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatterly_store_latency_seconds",
			Help:    "Persistence operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"op"}, // "create", "append", "edit", "delete", "get", "pair"
	)
)
