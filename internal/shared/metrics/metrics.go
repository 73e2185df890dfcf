package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "errorlens"

var (
	registry = prometheus.NewRegistry()

	analysisStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_started_total",
		Help:      "Total analyses started",
	})

	analysisCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_completed_total",
		Help:      "Total analyses completed with status ok",
	})

	// Labels: reason (llm_error, timeout, parse, validation, panic)
	analysisFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_failed_total",
		Help:      "Total analyses that produced a failed response",
	}, []string{"reason"})

	uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_rejected_total",
		Help:      "Uploads rejected before analysis",
	}, []string{"reason"})

	persistFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_persist_failed_total",
		Help:      "Analyses whose best-effort persistence failed",
	})

	analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_ms",
		Help:      "Analysis duration in milliseconds",
		Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
)

func init() {
	registry.MustRegister(
		analysisStartedTotal,
		analysisCompletedTotal,
		analysisFailedTotal,
		uploadRejectedTotal,
		persistFailedTotal,
		analysisDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Inc()
}

// IncAnalysisFailed increments the failed counter for the given reason.
func IncAnalysisFailed(reason string) {
	analysisFailedTotal.WithLabelValues(reason).Inc()
}

// IncUploadRejected increments the upload rejection counter.
func IncUploadRejected(reason string) {
	uploadRejectedTotal.WithLabelValues(reason).Inc()
}

// IncPersistFailed increments the persistence failure counter.
func IncPersistFailed() {
	persistFailedTotal.Inc()
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
