package examservice

import (
	"context"
	"io"
)

// Service defines the exam import operations.
type Service interface {
	// Import runs the import pipeline for req.Kind.
	Import(ctx context.Context, req ImportRequest) (*ImportReport, error)
	ImportExamResults(ctx context.Context, req ImportRequest) (*ImportReport, error)
	ImportTestRegistrations(ctx context.Context, req ImportRequest) (*ImportReport, error)

	// ListRecords returns what is stored for one examination.
	ListRecords(ctx context.Context, kind ImportKind, testID int64) ([]ExamRecord, error)

	// WriteTemplate writes an empty import workbook with the fixed header row.
	WriteTemplate(ctx context.Context, w io.Writer) error
}
