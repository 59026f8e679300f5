package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	requestsTotal     *prometheus.CounterVec
	latencySeconds    *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	examsGraded       *prometheus.CounterVec
	gradingSeconds    prometheus.Histogram
	notificationsSent *prometheus.CounterVec
	sseClients        prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "academy_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		examsGraded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_exams_graded_total",
			Help: "Total number of exam submissions graded, by letter grade.",
		}, []string{"grade"})

		gradingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "academy_exam_grading_seconds",
			Help:    "Time spent grading a single exam submission.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		})

		notificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_notifications_published_total",
			Help: "Total number of notifications published, by type.",
		}, []string{"type"})

		sseClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "academy_sse_clients_active",
			Help: "Number of SSE notification streams currently open.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, examsGraded, gradingSeconds, notificationsSent, sseClients)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// ExamsGradedTotal exposes the per-grade counter of graded submissions.
func ExamsGradedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return examsGraded
}

// ExamGradingSeconds exposes the grading duration histogram.
func ExamGradingSeconds() prometheus.Histogram {
	RegisterMetrics()
	return gradingSeconds
}

// NotificationsPublishedTotal exposes the per-type notification counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsSent
}

// SSEClientsActive exposes the gauge of open notification streams.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClients
}
