package metrics

import (
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lda"

// PipelineMetrics implements ports.PipelineObserver.
type PipelineMetrics struct {
	service string

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	pollAttempts  *prometheus.HistogramVec
	outcomes      *prometheus.CounterVec
	cleanups      *prometheus.CounterVec
}

func NewPipelineMetrics(service string, reg prometheus.Registerer) *PipelineMetrics {
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each ingestion stage in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "stage"},
	)
	stageErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_errors_total",
			Help:      "Ingestion stages that ended with an error.",
		},
		[]string{"service", "stage"},
	)
	pollAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "poll_attempts",
			Help:      "State polls per uploaded file by final state.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 40, 60},
		},
		[]string{"service", "final_state"},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "outcomes_total",
			Help:      "Pipeline invocations by operation and error kind.",
		},
		[]string{"service", "operation", "kind"},
	)
	cleanups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cleanup_total",
			Help:      "Cleanup attempts of scratch and remote files by result.",
		},
		[]string{"service", "resource", "result"},
	)

	reg.MustRegister(stageDuration, stageErrors, pollAttempts, outcomes, cleanups)

	return &PipelineMetrics{
		service:       service,
		stageDuration: stageDuration,
		stageErrors:   stageErrors,
		pollAttempts:  pollAttempts,
		outcomes:      outcomes,
		cleanups:      cleanups,
	}
}

func (m *PipelineMetrics) ObserveStage(stage domain.IngestStage, duration time.Duration, err error) {
	m.stageDuration.WithLabelValues(m.service, string(stage)).Observe(duration.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(m.service, string(stage)).Inc()
	}
}

func (m *PipelineMetrics) ObservePoll(attempts int, final domain.FileState) {
	state := string(final)
	if state == "" {
		state = "unknown"
	}
	m.pollAttempts.WithLabelValues(m.service, state).Observe(float64(attempts))
}

func (m *PipelineMetrics) ObserveOutcome(operation string, kind domain.ErrorKind) {
	label := string(kind)
	if label == "" {
		label = "success"
	}
	m.outcomes.WithLabelValues(m.service, operation, label).Inc()
}

func (m *PipelineMetrics) ObserveCleanup(resource string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.cleanups.WithLabelValues(m.service, resource, result).Inc()
}
