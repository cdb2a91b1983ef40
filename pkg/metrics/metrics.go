// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts routed chat commands by name and outcome.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "martini_commands_total",
			Help: "Total chat commands handled",
		},
		[]string{"command", "outcome"},
	)

	// HydrationsTotal counts first lookups of a conversation by result
	// ("restored", "missing", "failed").
	HydrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "martini_hydrations_total",
			Help: "Conversation hydrations from snapshot files",
		},
		[]string{"result"},
	)

	// PersistsTotal counts snapshot writes by status.
	PersistsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "martini_persists_total",
			Help: "Snapshot writes after list mutations",
		},
		[]string{"status"},
	)

	// ConversationsCached tracks conversations held in memory.
	ConversationsCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "martini_conversations_cached",
			Help: "Number of conversations held in memory",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "martini_sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)
)

// RecordCommand records the outcome of a routed command.
func RecordCommand(command, outcome string) {
	CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// RecordHydration records how a conversation was loaded.
func RecordHydration(result string) {
	HydrationsTotal.WithLabelValues(result).Inc()
}

// RecordPersist records a snapshot write.
func RecordPersist(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	PersistsTotal.WithLabelValues(status).Inc()
}
