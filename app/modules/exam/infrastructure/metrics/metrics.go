// Package exammetrics records operation and import metrics for the exam module.
package exammetrics

import (
	"context"
	"time"
)

// ExamMetrics is the metrics surface used by the exam service.
type ExamMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	// RecordImportRows counts rows of one import by status (imported, failed).
	RecordImportRows(ctx context.Context, kind, status string, n int)
	// RecordImportBatch counts one finished import by result (success, partial, fatal).
	RecordImportBatch(ctx context.Context, kind, result string, d time.Duration)
}

type noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() ExamMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordImportRows(context.Context, string, string, int)                  {}
func (noop) RecordImportBatch(context.Context, string, string, time.Duration)       {}
