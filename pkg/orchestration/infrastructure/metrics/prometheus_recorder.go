// Package metrics provides the Prometheus implementation of the engine's
// metric recording port and the OpenTelemetry tracer provider.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	metrics "github.com/tigerroll/lineup/pkg/orchestration/core/metrics"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// PrometheusRecorder is a Prometheus implementation of the
// metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	submissionCounter     *prometheus.CounterVec
	pollCounter           *prometheus.CounterVec
	reconciliationCounter *prometheus.CounterVec
	reconciliationSeconds *prometheus.HistogramVec
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a new PrometheusRecorder with its own
// registry, pre-registered with Go runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		submissionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineup_job_submissions_total",
			Help: "Total number of job submission attempts by outcome.",
		}, []string{"batch_type", "outcome"}),
		pollCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineup_job_polls_total",
			Help: "Total number of job status polls by resulting status.",
		}, []string{"status"}),
		reconciliationCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineup_batch_reconciliations_total",
			Help: "Total number of reconciliation runs by resulting batch status.",
		}, []string{"batch_type", "status"}),
		reconciliationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineup_batch_reconciliation_duration_seconds",
			Help:    "Duration of reconciliation runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"batch_type"}),
	}

	registry.MustRegister(
		r.submissionCounter,
		r.pollCounter,
		r.reconciliationCounter,
		r.reconciliationSeconds,
	)
	return r
}

// Registry exposes the recorder's registry so a serving layer can mount it.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *PrometheusRecorder) RecordJobSubmission(ctx context.Context, batchType model.BatchType, outcome string) {
	r.submissionCounter.WithLabelValues(string(batchType), outcome).Inc()
}

func (r *PrometheusRecorder) RecordJobPoll(ctx context.Context, status model.JobStatus) {
	r.pollCounter.WithLabelValues(string(status)).Inc()
}

func (r *PrometheusRecorder) RecordReconciliation(ctx context.Context, batchType model.BatchType, status model.BatchStatus, duration time.Duration) {
	r.reconciliationCounter.WithLabelValues(string(batchType), string(status)).Inc()
	r.reconciliationSeconds.WithLabelValues(string(batchType)).Observe(duration.Seconds())
}
