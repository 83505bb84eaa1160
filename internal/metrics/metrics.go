// Package metrics provides Prometheus metrics for BOM generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generation metrics
	BOMsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kibom_boms_generated_total",
			Help: "Total number of BOM generation requests",
		},
		[]string{"format", "status"},
	)

	GenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kibom_generate_duration_seconds",
			Help:    "Time taken to parse, consolidate and render a BOM",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"format"},
	)

	// Consolidation metrics
	PartsConsolidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kibom_parts_consolidated_total",
			Help: "Total number of parts placed on generated BOMs",
		},
	)

	WarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kibom_warnings_total",
			Help: "Total number of component warnings raised during consolidation",
		},
	)
)

// RecordGenerate records a finished generation request.
func RecordGenerate(format, status string, parts, warnings int, d time.Duration) {
	BOMsGenerated.WithLabelValues(format, status).Inc()
	GenerateDuration.WithLabelValues(format).Observe(d.Seconds())
	PartsConsolidated.Add(float64(parts))
	WarningsTotal.Add(float64(warnings))
}
