package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsApplied tracks events reduced into the projection per contract kind and event
	EventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_events_applied_total",
			Help: "Total number of events applied to the projection",
		},
		[]string{"chain", "kind", "event"},
	)

	// EventsSkipped tracks events that were delivered but not reduced
	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_events_skipped_total",
			Help: "Total number of events skipped by the projector",
		},
		[]string{"chain", "reason"},
	)

	// EventsFailed tracks events whose reduction failed
	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_events_failed_total",
			Help: "Total number of events that failed to apply",
		},
		[]string{"chain", "kind", "event"},
	)

	// HandlerLatency tracks how long a single event transaction takes
	HandlerLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projector_handler_latency_seconds",
			Help:    "Event handler latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "event"},
	)

	// ContractsDiscovered tracks contracts added to the watch set at runtime
	ContractsDiscovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projector_contracts_discovered_total",
			Help: "Total number of contracts discovered at runtime",
		},
		[]string{"chain", "kind"},
	)

	// ChainLatestBlock tracks the latest block height of the chain
	ChainLatestBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "projector_chain_latest_block",
			Help: "Latest block height of the chain",
		},
		[]string{"chain"},
	)

	// CursorBlock tracks the last block fully projected
	CursorBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "projector_cursor_block",
			Help: "Last block fully applied by the projector",
		},
		[]string{"chain"},
	)

	// Halted is 1 while the projector is stopped on a fatal error
	Halted = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "projector_halted",
			Help: "Whether the projector is halted on a fatal error",
		},
		[]string{"chain"},
	)

	// PublishErrors tracks change feed publish failures
	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projector_publish_errors_total",
			Help: "Total number of change feed publish failures",
		},
	)
)
