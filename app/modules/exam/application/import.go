package examservice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application/parsers"
	"github.com/Black-And-White-Club/dojo-portal/pkg/attr"
	"github.com/Black-And-White-Club/dojo-portal/pkg/results"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ImportExamResults imports a sheet of examination results.
func (s *ExamService) ImportExamResults(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	req.Kind = KindExamResults
	return s.Import(ctx, req)
}

// ImportTestRegistrations imports a sheet of examination registrations.
func (s *ExamService) ImportTestRegistrations(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	req.Kind = KindTestRegistrations
	return s.Import(ctx, req)
}

// Import runs the import pipeline. Unreadable files, empty uploads and unknown kinds are
// returned as errors without a report; every other problem is reported per row.
func (s *ExamService) Import(ctx context.Context, req ImportRequest) (*ImportReport, error) {
	if _, err := ParseImportKind(string(req.Kind)); err != nil {
		return nil, err
	}

	result, err := withTelemetry(s, ctx, operationName(req.Kind), req.FileName, func(ctx context.Context) (results.OperationResult[*ImportReport, error], error) {
		return s.importLogic(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func operationName(kind ImportKind) string {
	if kind == KindTestRegistrations {
		return "ImportTestRegistrations"
	}
	return "ImportExamResults"
}

// rowOutcome is the result of validating, resolving and scoring one row.
type rowOutcome struct {
	row      sourceRow
	resolved *ResolvedExamResult
	errors   []FieldIssue
	warnings []FieldIssue
}

func (s *ExamService) importLogic(ctx context.Context, req ImportRequest) (results.OperationResult[*ImportReport, error], error) {
	start := time.Now()
	importID := uuid.New()
	kind := string(req.Kind)
	logger := s.logger.With(
		attr.ExtractCorrelationID(ctx),
		attr.String("import_id", importID.String()),
		attr.String("kind", kind),
		attr.String("file_name", req.FileName),
	)

	rows, err := s.extract(ctx, req)
	if err != nil {
		s.metrics.RecordImportBatch(ctx, kind, "fatal", time.Since(start))
		var formatErr *parsers.FormatError
		if errors.As(err, &formatErr) || errors.Is(err, ErrEmptyUpload) {
			return results.FailureResult[*ImportReport, error](err), nil
		}
		return results.OperationResult[*ImportReport, error]{}, err
	}
	logger.InfoContext(ctx, "Import file extracted", attr.Int("rows", len(rows)))

	// Rows are processed to completion even if the caller goes away.
	pctx := context.WithoutCancel(ctx)

	outcomes := s.processRows(pctx, rows, req.DefaultTestID)

	b := newReportBuilder()
	for _, o := range outcomes {
		if o.resolved == nil {
			b.failed(o.row, o.errors, o.warnings)
			continue
		}
		if err := s.persister.persist(pctx, req.Kind, importID, req.RequestedBy, *o.resolved); err != nil {
			logger.WarnContext(pctx, "Row persistence failed",
				attr.Int("row", o.row.Number),
				attr.Int("line", o.row.Line),
				attr.Error(err),
			)
			b.failed(o.row, []FieldIssue{{Message: "persistence failed: " + err.Error()}}, o.warnings)
			continue
		}
		b.imported(o.row, o.warnings)
	}
	report := b.build()

	result := "success"
	if !report.Success {
		result = "partial"
	}
	s.metrics.RecordImportRows(pctx, kind, "imported", report.Imported)
	s.metrics.RecordImportRows(pctx, kind, "failed", report.Failed)
	s.metrics.RecordImportBatch(pctx, kind, result, time.Since(start))

	logger.InfoContext(pctx, "Import finished",
		attr.Int("total", report.Total),
		attr.Int("imported", report.Imported),
		attr.Int("failed", report.Failed),
		attr.Int("warnings", len(report.Warnings)),
		attr.Duration("duration", time.Since(start)),
	)

	return results.SuccessResult[*ImportReport, error](report), nil
}

// extract reads every data row before any is processed, so a malformed line anywhere in
// the file fails the whole import. Template rows are dropped and rows are numbered here.
func (s *ExamService) extract(ctx context.Context, req ImportRequest) ([]sourceRow, error) {
	extractor, err := s.factory.ForFileName(req.FileName)
	if err != nil {
		return nil, err
	}
	if req.Data == nil {
		return nil, ErrEmptyUpload
	}

	br := bufio.NewReader(req.Data)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyUpload
		}
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	rr, err := extractor.Open(br)
	if err != nil {
		return nil, err
	}
	defer rr.Close()

	var rows []sourceRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("import aborted while reading file: %w", err)
		}
		raw, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if IsTemplateRow(raw.Cells) {
			continue
		}
		rows = append(rows, sourceRow{Number: len(rows) + 1, Line: raw.Line, Cells: raw.Cells})
	}
	return rows, nil
}

// processRows validates, resolves and scores rows on a bounded pool. Outcomes keep file order.
func (s *ExamService) processRows(ctx context.Context, rows []sourceRow, defaultTestID int64) []rowOutcome {
	outcomes := make([]rowOutcome, len(rows))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, row := range rows {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.ErrorContext(ctx, "Panic while processing row",
						attr.Int("row", row.Number),
						slog.Any("panic", r),
					)
					outcomes[i] = rowOutcome{row: row, errors: []FieldIssue{{Message: fmt.Sprintf("processing failed: %v", r)}}}
				}
			}()
			outcomes[i] = s.processRow(ctx, row, defaultTestID)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *ExamService) processRow(ctx context.Context, row sourceRow, defaultTestID int64) rowOutcome {
	out := rowOutcome{row: row}

	mapped := s.mapper.Map(row.Cells, defaultTestID)
	out.warnings = mapped.Warnings
	if !mapped.Accepted() {
		out.errors = mapped.Errors
		return out
	}

	refs, issue := s.resolver.Resolve(ctx, mapped.Row)
	if issue != nil {
		out.errors = []FieldIssue{*issue}
		return out
	}

	eval := Evaluate(mapped.Row.Scores)
	for _, i := range eval.Missing {
		field := CategoryField(i)
		out.warnings = append(out.warnings, FieldIssue{Field: field, Message: field + " missing, scored as 0"})
	}

	out.resolved = &ResolvedExamResult{
		Row:        *mapped.Row,
		References: refs,
		Evaluation: eval,
	}
	return out
}

// ParseTestID parses an optional test id form value. Empty means none.
func ParseTestID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("test_id must be a positive integer")
	}
	return id, nil
}
