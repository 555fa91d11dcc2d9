package examdb

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	mu    sync.Mutex
	trace []string

	GetClubByCodeFn          func(ctx context.Context, db bun.IDB, code string) (*Club, error)
	GetMemberByCodeFn        func(ctx context.Context, db bun.IDB, code string) (*Member, error)
	GetClubMemberFn          func(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, code string) (*Member, error)
	GetBeltByLabelFn         func(ctx context.Context, db bun.IDB, label string) (*BeltLevel, error)
	UpsertExamResultFn       func(ctx context.Context, db bun.IDB, result *ExamResult) error
	UpsertTestRegistrationFn func(ctx context.Context, db bun.IDB, reg *TestRegistration) error
	ListExamResultsFn        func(ctx context.Context, db bun.IDB, testID int64) ([]ExamResult, error)
	ListTestRegistrationsFn  func(ctx context.Context, db bun.IDB, testID int64) ([]TestRegistration, error)
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Trace returns the calls made so far.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) GetClubByCode(ctx context.Context, db bun.IDB, code string) (*Club, error) {
	f.record("GetClubByCode")
	if f.GetClubByCodeFn != nil {
		return f.GetClubByCodeFn(ctx, db, code)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetMemberByCode(ctx context.Context, db bun.IDB, code string) (*Member, error) {
	f.record("GetMemberByCode")
	if f.GetMemberByCodeFn != nil {
		return f.GetMemberByCodeFn(ctx, db, code)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetClubMember(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, code string) (*Member, error) {
	f.record("GetClubMember")
	if f.GetClubMemberFn != nil {
		return f.GetClubMemberFn(ctx, db, clubUUID, code)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetBeltByLabel(ctx context.Context, db bun.IDB, label string) (*BeltLevel, error) {
	f.record("GetBeltByLabel")
	if f.GetBeltByLabelFn != nil {
		return f.GetBeltByLabelFn(ctx, db, label)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) UpsertExamResult(ctx context.Context, db bun.IDB, result *ExamResult) error {
	f.record("UpsertExamResult")
	if f.UpsertExamResultFn != nil {
		return f.UpsertExamResultFn(ctx, db, result)
	}
	return nil
}

func (f *FakeRepository) UpsertTestRegistration(ctx context.Context, db bun.IDB, reg *TestRegistration) error {
	f.record("UpsertTestRegistration")
	if f.UpsertTestRegistrationFn != nil {
		return f.UpsertTestRegistrationFn(ctx, db, reg)
	}
	return nil
}

func (f *FakeRepository) ListExamResults(ctx context.Context, db bun.IDB, testID int64) ([]ExamResult, error) {
	f.record("ListExamResults")
	if f.ListExamResultsFn != nil {
		return f.ListExamResultsFn(ctx, db, testID)
	}
	return nil, nil
}

func (f *FakeRepository) ListTestRegistrations(ctx context.Context, db bun.IDB, testID int64) ([]TestRegistration, error) {
	f.record("ListTestRegistrations")
	if f.ListTestRegistrationsFn != nil {
		return f.ListTestRegistrationsFn(ctx, db, testID)
	}
	return nil, nil
}

// Ensure the fake actually satisfies the interface
var _ Repository = (*FakeRepository)(nil)
