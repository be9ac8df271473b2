// Package metrics defines and registers all custom Prometheus metrics for the
// task panel and the task API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskpanel"

// ── Gateway metrics ──────────────────────────────────────────────────────────

// GatewayCallsTotal counts gateway operations by the backend that served them.
// Labels:
//   - op: logical operation (e.g. "list_tasks", "create_task")
//   - backend: "remote" or "local"
var GatewayCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_calls_total",
		Help:      "Total number of gateway operations, by serving backend.",
	},
	[]string{"op", "backend"},
)

// RemoteFailuresTotal counts remote calls that failed and triggered the
// local fallback.
// Label:
//   - op: logical operation that was attempted remotely
var RemoteFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_failures_total",
		Help:      "Total number of failed remote calls that fell back to local storage.",
	},
	[]string{"op"},
)

// RemoteAvailable is 1 while the gateway prefers the remote endpoint.
var RemoteAvailable = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "remote_available",
		Help:      "Whether the gateway currently treats the remote endpoint as reachable (1) or not (0).",
	},
)

// GatewayDuration measures end-to-end gateway latency.
// Label:
//   - op: logical operation
var GatewayDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_duration_seconds",
		Help:      "Duration of gateway operations including any fallback.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"op"},
)

// ── Session metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "forbidden" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Real-time metrics ────────────────────────────────────────────────────────

// ChannelEventsTotal counts events delivered to channel listeners.
// Label:
//   - event: delivered event name (e.g. "task_created")
var ChannelEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "channel_events_total",
		Help:      "Total number of simulated real-time events dispatched to listeners.",
	},
	[]string{"event"},
)

// ChannelQueueDepth tracks pending deliveries per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var ChannelQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "channel_queue_depth",
		Help:      "Current number of deliveries pending in each channel dispatcher worker.",
	},
	[]string{"worker_id"},
)

// ── Task API metrics ─────────────────────────────────────────────────────────

// TasksCreatedTotal counts tasks created, by priority.
// Label:
//   - priority: "low", "medium" or "high"
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)
