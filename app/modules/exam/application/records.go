package examservice

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application/parsers"
	"github.com/Black-And-White-Club/dojo-portal/pkg/results"
	"github.com/uptrace/bun"
)

// ListRecords returns what is stored for one examination.
func (s *ExamService) ListRecords(ctx context.Context, kind ImportKind, testID int64) ([]ExamRecord, error) {
	if _, err := ParseImportKind(string(kind)); err != nil {
		return nil, err
	}

	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]ExamRecord, error], error) {
		return s.listRecordsLogic(ctx, db, kind, testID)
	}

	result, err := withTelemetry(s, ctx, "ListRecords", strconv.FormatInt(testID, 10), func(ctx context.Context) (results.OperationResult[[]ExamRecord, error], error) {
		return runInTx(s, ctx, listTx)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *ExamService) listRecordsLogic(ctx context.Context, db bun.IDB, kind ImportKind, testID int64) (results.OperationResult[[]ExamRecord, error], error) {
	records := []ExamRecord{}

	switch kind {
	case KindTestRegistrations:
		regs, err := s.repo.ListTestRegistrations(ctx, db, testID)
		if err != nil {
			return results.OperationResult[[]ExamRecord, error]{}, fmt.Errorf("failed to list registrations: %w", err)
		}
		for _, r := range regs {
			records = append(records, ExamRecord{
				TestID:    r.TestID,
				MemberID:  r.UserID,
				ClubID:    r.ClubUUID,
				BeltID:    r.BeltUUID,
				FullName:  r.FullName,
				Composite: r.Composite,
				Outcome:   Outcome(r.Status),
				UpdatedAt: r.UpdatedAt,
			})
		}
	default:
		res, err := s.repo.ListExamResults(ctx, db, testID)
		if err != nil {
			return results.OperationResult[[]ExamRecord, error]{}, fmt.Errorf("failed to list results: %w", err)
		}
		for _, r := range res {
			records = append(records, ExamRecord{
				TestID:    r.TestID,
				MemberID:  r.UserID,
				ClubID:    r.ClubUUID,
				BeltID:    r.BeltUUID,
				FullName:  r.FullName,
				Composite: r.Composite,
				Outcome:   Outcome(r.Outcome),
				UpdatedAt: r.UpdatedAt,
			})
		}
	}

	return results.SuccessResult[[]ExamRecord, error](records), nil
}

// WriteTemplate writes an empty import workbook with the fixed header row.
func (s *ExamService) WriteTemplate(ctx context.Context, w io.Writer) error {
	_, err := withTelemetry(s, ctx, "WriteTemplate", parsers.TemplateSheet, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		if err := parsers.WriteTemplate(w, Header(), templateExample); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

var _ Service = (*ExamService)(nil)
