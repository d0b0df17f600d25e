package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	chunksStored    *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sv",
			Subsystem: "pipeline",
			Name:      "document_process_total",
			Help:      "Total processed documents by terminal status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sv",
			Subsystem: "pipeline",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by terminal status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sv",
			Subsystem: "pipeline",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document pipeline runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunksStored := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sv",
			Subsystem: "pipeline",
			Name:      "chunks_stored",
			Help:      "Distribution of chunks stored per completed document.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, chunksStored)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		chunksStored:    chunksStored,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ProcessStarted()  { m.processInFlight.Inc() }
func (m *WorkerMetrics) ProcessFinished() { m.processInFlight.Dec() }

func (m *WorkerMetrics) ObserveProcess(service, status string, elapsed time.Duration) {
	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(elapsed.Seconds())
}

func (m *WorkerMetrics) ObserveChunksStored(service string, count int) {
	m.chunksStored.WithLabelValues(service).Observe(float64(count))
}
