// Package metrics defines and registers all custom Prometheus metrics for the
// task manager API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// ── Authentication metrics ───────────────────────────────────────────────────

// AuthAttemptsTotal counts register/login/logout attempts.
// Labels:
//   - op: "register", "login" or "logout"
//   - result: "success" or a short failure reason (e.g. "invalid_credentials", "conflict")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"op", "result"},
)

// TokenDecodeFailuresTotal counts bearer tokens the identity resolver ignored.
// Label:
//   - reason: "malformed", "invalid_signature", "expired", "revoked" or "revocation_check"
var TokenDecodeFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_decode_failures_total",
		Help:      "Total number of presented bearer tokens that did not yield an identity.",
	},
	[]string{"reason"},
)

// AuthorizationDecisionsTotal counts policy outcomes at the route layer.
// Label:
//   - outcome: "granted", "unauthenticated" or "forbidden"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Reminder metrics ─────────────────────────────────────────────────────────

// ReminderQueueDepth tracks the number of reminders waiting in the dispatcher queue.
var ReminderQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reminder_queue_depth",
		Help:      "Current number of reminders waiting for a dispatcher worker.",
	},
)

// RemindersTotal counts reminder deliveries.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var RemindersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_total",
		Help:      "Total number of reminder emails, by delivery result.",
	},
	[]string{"result"},
)

// ReminderRunsTotal counts reminder sweeps.
// Label:
//   - trigger: "schedule" or "manual"
var ReminderRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminder_runs_total",
		Help:      "Total number of due-task reminder sweeps, by trigger.",
	},
	[]string{"trigger"},
)
