// Package metrics declares the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollbook_mutations_total",
		Help: "Tracker mutations by operation and result",
	}, []string{"op", "result"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollbook_exports_total",
		Help: "Report exports by format and result",
	}, []string{"format", "result"})

	FlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollbook_store_flush_duration_seconds",
		Help:    "Duration of snapshot writes to the store",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollbook_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// Result labels.
const (
	OK      = "ok"
	Invalid = "invalid"
	Failed  = "error"
)
