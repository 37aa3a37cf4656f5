// Package metrics holds the Prometheus collectors exported by the bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// InteractionsTotal counts handled interaction events by kind and outcome.
	InteractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wolbridge_interactions_total",
			Help: "Total number of interaction events handled.",
		},
		[]string{"kind", "outcome"},
	)

	// WakePacketsTotal counts wake broadcasts by status (sent/failed).
	WakePacketsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wolbridge_wake_packets_total",
			Help: "Total number of magic packet broadcasts attempted.",
		},
		[]string{"status"},
	)

	// PlatformCallLatency records the latency of chat platform API calls.
	PlatformCallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wolbridge_platform_call_latency_seconds",
			Help:    "Latency of chat platform API calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"}, // register, post, ack
	)

	// CommandRegistered is 1 once the remote command is registered.
	CommandRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wolbridge_command_registered",
			Help: "Whether the remote command is registered (1=yes, 0=no).",
		},
	)
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(InteractionsTotal)
	Registry.MustRegister(WakePacketsTotal)
	Registry.MustRegister(PlatformCallLatency)
	Registry.MustRegister(CommandRegistered)
}
