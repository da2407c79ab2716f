package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Buckets tuned for handler latencies dominated by the Turnstile round trip
	// and the SMTP dialogue (up to tens of seconds on a slow relay)
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Business Metrics
	// status: accepted, honeypot, csrf_rejected, turnstile_rejected,
	// validation_rejected, delivery_failed
	SubmissionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twt_form_submissions_total",
			Help: "Total number of form submissions by form kind and outcome",
		},
		[]string{"form", "status"},
	)

	TurnstileVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twt_turnstile_verifications_total",
			Help: "Total number of Turnstile verification attempts",
		},
		[]string{"status"},
	)

	CSRFTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twt_csrf_tokens_issued_total",
			Help: "Total number of anti-forgery tokens issued",
		},
	)

	// Mail relay client metrics
	MailDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mail_client_dispatch_duration_seconds",
			Help:    "Outbound mail dispatch duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"status"},
	)

	MailDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_client_dispatch_total",
			Help: "Total number of outbound mail dispatch attempts",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
