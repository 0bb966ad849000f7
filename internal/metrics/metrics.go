// Package metrics exposes Prometheus counters for turn processing,
// image generation and credit spend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "chimera"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "turns_total",
			Help:      "Total number of processed player turns",
		},
		[]string{"status"},
	)

	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "turn_duration_seconds",
			Help:      "Turn processing duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120},
		},
	)

	ImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "images",
			Name:      "generated_total",
			Help:      "Total number of image generation tasks by outcome",
		},
		[]string{"context", "status"},
	)

	CreditsSpentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credits",
			Name:      "spent_total",
			Help:      "Total credits charged by operation",
		},
		[]string{"operation"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Total provider call failures",
		},
		[]string{"provider"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "active_sessions",
			Help:      "Current number of live sessions",
		},
	)
)
