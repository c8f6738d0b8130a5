// Package metrics defines and registers all custom Prometheus metrics of the
// flappy services. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on import; GET
// /metrics on every service exposes them next to the echoprometheus HTTP
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "flappy"

// ── Credential metrics ────────────────────────────────────────────────────────

// AuthFailuresTotal counts requests rejected by the authorization middleware.
// Labels:
//   - reason: "missing", "malformed", "signature", "expired", "stale", "forbidden"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by credential checks.",
	},
	[]string{"reason"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Settings metrics ──────────────────────────────────────────────────────────

// SettingsWritesTotal counts configuration writes.
// Label:
//   - result: "ok", "invalid" or "persist_failed"
var SettingsWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_writes_total",
		Help:      "Total number of game settings writes, labelled by result.",
	},
	[]string{"result"},
)

// SettingsObservers tracks currently connected live-update observers.
var SettingsObservers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "settings_observers",
		Help:      "Current number of connected settings observers.",
	},
)

// SettingsBroadcastDroppedTotal counts snapshots discarded for slow observers.
var SettingsBroadcastDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_broadcast_dropped_total",
		Help:      "Total number of pending settings snapshots dropped for slow observers.",
	},
)

// ── Stats metrics ─────────────────────────────────────────────────────────────

// StatsRecordedTotal counts newly stored game stats.
// Label:
//   - game_mode: mode reported by the client
var StatsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_recorded_total",
		Help:      "Total number of game stats recorded, by game mode.",
	},
	[]string{"game_mode"},
)

// StatsDedupTotal counts idempotency decisions on stat submissions.
// Label:
//   - result: "hit" (replayed) or "miss" (new stat stored)
var StatsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_dedup_total",
		Help:      "Total number of keyed stat submissions, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Skin metrics ──────────────────────────────────────────────────────────────

// SkinsUploadedTotal counts stored skin uploads.
var SkinsUploadedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skins_uploaded_total",
		Help:      "Total number of skin images uploaded.",
	},
)
