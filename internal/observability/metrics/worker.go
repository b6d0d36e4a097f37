package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	reanalysisTotal    *prometheus.CounterVec
	reanalysisDuration *prometheus.HistogramVec
	reanalysisInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	reanalysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "reanalysis_total",
			Help:      "Total re-analysed documents by status.",
		},
		[]string{"service", "status"},
	)
	reanalysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "reanalysis_duration_seconds",
			Help:      "Document re-analysis duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service", "status"},
	)
	reanalysisInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "reanalysis_in_flight",
			Help:      "Number of in-flight re-analysis tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(reanalysisTotal, reanalysisDuration, reanalysisInFlight)

	return &WorkerMetrics{
		registry:           registry,
		reanalysisTotal:    reanalysisTotal,
		reanalysisDuration: reanalysisDuration,
		reanalysisInFlight: reanalysisInFlight,
	}
}

func (m *WorkerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.reanalysisInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.reanalysisInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.reanalysisTotal.WithLabelValues(service, status).Inc()
	m.reanalysisDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
