// Package services – Prometheus instrumentation.
//
// The command counter uses the intent name as its only label; the intent
// set is closed, so cardinality is bounded by definition.
package services

import "github.com/prometheus/client_golang/prometheus"

// commandsTotal counts handled commands by interpreted intent.
var commandsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_commands_total",
		Help: "Total number of handled bot commands by intent.",
	},
	[]string{"intent"},
)

func init() {
	prometheus.MustRegister(commandsTotal)
}
