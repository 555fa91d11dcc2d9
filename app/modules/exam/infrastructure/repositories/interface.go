package examdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for exam persistence.
type Repository interface {
	// GetClubByCode retrieves a club by its code.
	GetClubByCode(ctx context.Context, db bun.IDB, code string) (*Club, error)

	// GetMemberByCode retrieves a member by its code regardless of club.
	GetMemberByCode(ctx context.Context, db bun.IDB, code string) (*Member, error)

	// GetClubMember retrieves a member by its code within one club.
	GetClubMember(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, code string) (*Member, error)

	// GetBeltByLabel retrieves a belt level by label, ignoring case.
	GetBeltByLabel(ctx context.Context, db bun.IDB, label string) (*BeltLevel, error)

	// UpsertExamResult inserts or replaces the result keyed by (test_id, user_id).
	UpsertExamResult(ctx context.Context, db bun.IDB, result *ExamResult) error

	// UpsertTestRegistration inserts or replaces the registration keyed by (test_id, user_id).
	UpsertTestRegistration(ctx context.Context, db bun.IDB, reg *TestRegistration) error

	// ListExamResults returns the results of one examination ordered by member name.
	ListExamResults(ctx context.Context, db bun.IDB, testID int64) ([]ExamResult, error)

	// ListTestRegistrations returns the registrations of one examination ordered by member name.
	ListTestRegistrations(ctx context.Context, db bun.IDB, testID int64) ([]TestRegistration, error)
}
