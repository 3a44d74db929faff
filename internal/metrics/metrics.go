package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// CommandMetrics counts dispatcher activity for the /metrics endpoint.
type CommandMetrics struct {
	Dispatched    *prometheus.CounterVec
	StoreFailures prometheus.Counter
}

func NewCommandMetrics() *CommandMetrics {
	return &CommandMetrics{
		Dispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderboard",
			Name:      "commands_dispatched_total",
			Help:      "Commands dispatched, by canonical name and outcome kind.",
		}, []string{"command", "outcome"}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "orderboard",
			Name:      "store_failures_total",
			Help:      "Counter store operations that failed at the storage layer.",
		}),
	}
}

var Module = fx.Module("metrics",
	fx.Provide(NewCommandMetrics),
)
