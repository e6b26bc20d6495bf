package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the transcription proxy.
type Metrics struct {
	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequests  prometheus.Counter
	UpstreamSuccesses prometheus.Counter
	UpstreamFailures  prometheus.Counter
	UpstreamDuration  prometheus.Histogram
	AudioBytes        prometheus.Histogram
}

// NewMetrics creates and registers all proxy metrics on the given registerer.
// Tests pass a private registry so parallel servers do not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voznota_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voznota_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voznota_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),

		UpstreamRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "voznota_upstream_requests_total",
			Help: "Total number of transcription requests sent upstream",
		}),
		UpstreamSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "voznota_upstream_successes_total",
			Help: "Total number of successful upstream transcriptions",
		}),
		UpstreamFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voznota_upstream_failures_total",
			Help: "Total number of failed upstream transcriptions",
		}),
		UpstreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voznota_upstream_duration_seconds",
			Help:    "Duration of upstream transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~2 minutes
		}),
		AudioBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voznota_audio_bytes",
			Help:    "Size of transcribed audio payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error.
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}

// RecordUpstreamSuccess records a successful upstream transcription.
func (m *Metrics) RecordUpstreamSuccess(durationSeconds float64, audioBytes int) {
	m.UpstreamRequests.Inc()
	m.UpstreamSuccesses.Inc()
	m.UpstreamDuration.Observe(durationSeconds)
	m.AudioBytes.Observe(float64(audioBytes))
}

// RecordUpstreamFailure records a failed upstream transcription.
func (m *Metrics) RecordUpstreamFailure(durationSeconds float64) {
	m.UpstreamRequests.Inc()
	m.UpstreamFailures.Inc()
	m.UpstreamDuration.Observe(durationSeconds)
}
