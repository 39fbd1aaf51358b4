// Package metrics provides Prometheus metrics for the RSPL pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job metrics
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rspl_jobs_total",
			Help: "Jobs that reached a terminal state",
		},
		[]string{"status"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rspl_job_duration_seconds",
			Help:    "Wall time from pipeline start to terminal state",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rspl_jobs_in_flight",
			Help: "Pipelines currently running",
		},
	)

	// Synthesis metrics
	PartsSynthesized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rspl_parts_synthesized_total",
			Help: "Part records synthesized, by classification code",
		},
		[]string{"classification"},
	)

	// Analysis service metrics
	AnalysisCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rspl_analysis_calls_total",
			Help: "Calls to the document/AI analysis service",
		},
		[]string{"mode", "outcome"},
	)

	// Export metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rspl_exports_total",
			Help: "Exported RSPL documents, by format",
		},
		[]string{"format"},
	)
)

// RecordJob records a job reaching a terminal status.
func RecordJob(status string, elapsed time.Duration) {
	JobsTotal.WithLabelValues(status).Inc()
	JobDuration.Observe(elapsed.Seconds())
}

// RecordAnalysis records one analysis-service call.
func RecordAnalysis(mode string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AnalysisCalls.WithLabelValues(mode, outcome).Inc()
}

func RecordPart(classification string) {
	PartsSynthesized.WithLabelValues(classification).Inc()
}

func RecordExport(format string) {
	ExportsTotal.WithLabelValues(format).Inc()
}
