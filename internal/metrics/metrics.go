// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollCycles counts coordinator poll cycles by outcome (success/failure).
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orefmon",
		Name:      "poll_cycles_total",
		Help:      "Coordinator poll cycles by outcome.",
	}, []string{"outcome"})

	// FetchRetries counts individual feed fetch retries by feed name.
	FetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orefmon",
		Name:      "fetch_retries_total",
		Help:      "Feed fetch retry attempts by feed.",
	}, []string{"feed"})

	// ActiveAlerts tracks the size of the active subset of the last snapshot.
	ActiveAlerts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "orefmon",
		Name:      "active_alerts",
		Help:      "Active alerts in the latest snapshot.",
	})

	// BusEvents counts outward bus events by subject.
	BusEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orefmon",
		Name:      "bus_events_total",
		Help:      "Outward bus events emitted by subject.",
	}, []string{"subject"})

	// WSReconnects counts websocket listener reconnect attempts.
	WSReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "orefmon",
		Name:      "ws_reconnects_total",
		Help:      "Websocket listener reconnect attempts.",
	})
)
