package exammetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements ExamMetrics with Prometheus collectors.
type PrometheusMetrics struct {
	operationAttempts *prometheus.CounterVec
	operationSuccess  *prometheus.CounterVec
	operationFailure  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	importRows        *prometheus.CounterVec
	importBatches     *prometheus.CounterVec
	importDuration    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_operation_attempts_total",
			Help: "Exam service operations started.",
		}, []string{"operation", "service"}),
		operationSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_operation_success_total",
			Help: "Exam service operations that completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		operationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_operation_failure_total",
			Help: "Exam service operations that failed.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exam_operation_duration_seconds",
			Help:    "Exam service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_import_rows_total",
			Help: "Imported spreadsheet rows by outcome.",
		}, []string{"kind", "status"}),
		importBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_import_batches_total",
			Help: "Spreadsheet imports by result.",
		}, []string{"kind", "result"}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exam_import_duration_seconds",
			Help:    "Time to import one spreadsheet.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{
		m.operationAttempts, m.operationSuccess, m.operationFailure, m.operationDuration,
		m.importRows, m.importBatches, m.importDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccess.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailure.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordImportRows(_ context.Context, kind, status string, n int) {
	if n <= 0 {
		return
	}
	m.importRows.WithLabelValues(kind, status).Add(float64(n))
}

func (m *PrometheusMetrics) RecordImportBatch(_ context.Context, kind, result string, d time.Duration) {
	m.importBatches.WithLabelValues(kind, result).Inc()
	m.importDuration.WithLabelValues(kind).Observe(d.Seconds())
}

var _ ExamMetrics = (*PrometheusMetrics)(nil)
