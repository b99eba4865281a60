// Package prometheus provides Prometheus metrics for the thumbnail pipeline.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "thumbgen"

// Status constants for metric labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// generationsTotal counts finished generation requests.
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of thumbnail generation requests",
		},
		[]string{"backend", "model", "status"}, // status: success, error
	)

	// generationDuration is a histogram of end-to-end generation duration.
	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Histogram of end-to-end thumbnail generation duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"backend", "model"},
	)

	// generationsActive is a gauge of in-flight generation requests.
	generationsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generations_active",
			Help:      "Number of currently in-flight generation requests",
		},
	)

	// pollAttempts is a histogram of poll attempts per polling-provider task.
	pollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_poll_attempts",
			Help:      "Histogram of poll attempts until a task reached a terminal state",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 40, 60},
		},
	)

	// generationCostTotal accumulates cost in cents from the static price table.
	generationCostTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_cost_cents_total",
			Help:      "Total generation cost in cents by model",
		},
		[]string{"model"},
	)

	// storageUploadsTotal counts object store uploads.
	storageUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_uploads_total",
			Help:      "Total number of object store uploads",
		},
		[]string{"status"}, // status: success, error
	)

	// storageUploadBytes accumulates bytes uploaded to the object store.
	storageUploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_upload_bytes_total",
			Help:      "Total bytes uploaded to the object store",
		},
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		generationsTotal,
		generationDuration,
		generationsActive,
		pollAttempts,
		generationCostTotal,
		storageUploadsTotal,
		storageUploadBytes,
	}
)

// RecordGenerationStart records a generation entering the pipeline.
func RecordGenerationStart() {
	generationsActive.Inc()
}

// RecordGenerationEnd records a finished generation.
func RecordGenerationEnd(backend, model, status string, durationSeconds float64) {
	generationsActive.Dec()
	generationsTotal.WithLabelValues(backend, model, status).Inc()
	generationDuration.WithLabelValues(backend, model).Observe(durationSeconds)
}

// RecordPollAttempts records how many polls a task took to settle.
func RecordPollAttempts(attempts int) {
	pollAttempts.Observe(float64(attempts))
}

// RecordGenerationCost records the cost of a generation.
func RecordGenerationCost(model string, cents int) {
	if cents > 0 {
		generationCostTotal.WithLabelValues(model).Add(float64(cents))
	}
}

// RecordStorageUpload records an object store upload outcome.
func RecordStorageUpload(status string, sizeBytes int) {
	storageUploadsTotal.WithLabelValues(status).Inc()
	if status == StatusSuccess && sizeBytes > 0 {
		storageUploadBytes.Add(float64(sizeBytes))
	}
}
