package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ChatTurns counts processed chat turns by outcome (ok, error).
	ChatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_chat_turns_total",
		Help: "Chat turns processed, by outcome.",
	}, []string{"outcome"})

	// TurnLatency observes end-to-end chat turn latency in seconds.
	TurnLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chatbot_chat_turn_duration_seconds",
		Help:    "End-to-end chat turn latency.",
		Buckets: prometheus.DefBuckets,
	})

	// ToolInvocations counts tool executions by tool name and status
	// (ok, error, unknown).
	ToolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_tool_invocations_total",
		Help: "Tool invocations, by tool name and status.",
	}, []string{"tool", "status"})
)

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
