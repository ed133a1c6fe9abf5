// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nextbest"

var (
	Picks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "picks_total",
		Help:      "Weighted picks and game draws, by game.",
	}, []string{"game"})

	Awards = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "awards_total",
		Help:      "XP award events, by game.",
	}, []string{"game"})

	XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "xp_awarded_total",
		Help:      "Sum of positive XP amounts awarded.",
	})

	LedgerXP = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ledger_xp",
		Help:      "Current XP total held by the ledger.",
	})

	PersistWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_writes_total",
		Help:      "Ledger persistence attempts, by result (ok, error, superseded).",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
