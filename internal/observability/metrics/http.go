package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalRequestsTotal *prometheus.CounterVec
	retrievalNoContext     *prometheus.CounterVec
	retrievedChunks        *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sv",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sv",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sv",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sv",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total successful retrieval requests.",
		},
		[]string{"service"},
	)
	retrievalNoContext := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sv",
			Subsystem: "retrieval",
			Name:      "no_context_total",
			Help:      "Total retrieval requests without any scored source.",
		},
		[]string{"service"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sv",
			Subsystem: "retrieval",
			Name:      "retrieved_chunks",
			Help:      "Distribution of chunks returned per retrieval request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalRequestsTotal,
		retrievalNoContext,
		retrievedChunks,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		retrievalRequestsTotal: retrievalRequestsTotal,
		retrievalNoContext:     retrievalNoContext,
		retrievedChunks:        retrievedChunks,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) ObserveRequest(service, method, path string, status int, elapsed time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(elapsed.Seconds())
}

func (m *HTTPServerMetrics) RequestStarted()  { m.requestInFlight.Inc() }
func (m *HTTPServerMetrics) RequestFinished() { m.requestInFlight.Dec() }

func (m *HTTPServerMetrics) ObserveRetrieval(service string, sources int) {
	m.retrievalRequestsTotal.WithLabelValues(service).Inc()
	if sources == 0 {
		m.retrievalNoContext.WithLabelValues(service).Inc()
	}
	m.retrievedChunks.WithLabelValues(service).Observe(float64(sources))
}
