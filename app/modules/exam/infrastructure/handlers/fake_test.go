package examhandlers

import (
	"context"
	"io"
	"sync"

	examservice "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application"
)

// ------------------------
// Fake Exam Service
// ------------------------

type FakeExamService struct {
	mu    sync.Mutex
	trace []string

	ImportFunc        func(ctx context.Context, req examservice.ImportRequest) (*examservice.ImportReport, error)
	ListRecordsFunc   func(ctx context.Context, kind examservice.ImportKind, testID int64) ([]examservice.ExamRecord, error)
	WriteTemplateFunc func(ctx context.Context, w io.Writer) error
}

func NewFakeExamService() *FakeExamService {
	return &FakeExamService{trace: []string{}}
}

func (f *FakeExamService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeExamService) Import(ctx context.Context, req examservice.ImportRequest) (*examservice.ImportReport, error) {
	f.record("Import:" + string(req.Kind))
	if f.ImportFunc != nil {
		return f.ImportFunc(ctx, req)
	}
	return &examservice.ImportReport{Success: true, Errors: []examservice.RowError{}, Warnings: []examservice.Warning{}}, nil
}

func (f *FakeExamService) ImportExamResults(ctx context.Context, req examservice.ImportRequest) (*examservice.ImportReport, error) {
	req.Kind = examservice.KindExamResults
	return f.Import(ctx, req)
}

func (f *FakeExamService) ImportTestRegistrations(ctx context.Context, req examservice.ImportRequest) (*examservice.ImportReport, error) {
	req.Kind = examservice.KindTestRegistrations
	return f.Import(ctx, req)
}

func (f *FakeExamService) ListRecords(ctx context.Context, kind examservice.ImportKind, testID int64) ([]examservice.ExamRecord, error) {
	f.record("ListRecords:" + string(kind))
	if f.ListRecordsFunc != nil {
		return f.ListRecordsFunc(ctx, kind, testID)
	}
	return []examservice.ExamRecord{}, nil
}

func (f *FakeExamService) WriteTemplate(ctx context.Context, w io.Writer) error {
	f.record("WriteTemplate")
	if f.WriteTemplateFunc != nil {
		return f.WriteTemplateFunc(ctx, w)
	}
	return nil
}

func (f *FakeExamService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ examservice.Service = (*FakeExamService)(nil)
