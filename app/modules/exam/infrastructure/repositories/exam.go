package examdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new exam repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// GetClubByCode retrieves a club by its code.
func (r *Impl) GetClubByCode(ctx context.Context, db bun.IDB, code string) (*Club, error) {
	db = r.resolveDB(db)
	club := new(Club)
	if err := db.NewSelect().
		Model(club).
		Where("code = ?", code).
		Scan(ctx); err != nil {
		return nil, notFound(err, "club by code")
	}
	return club, nil
}

// GetMemberByCode retrieves a member by its code regardless of club.
func (r *Impl) GetMemberByCode(ctx context.Context, db bun.IDB, code string) (*Member, error) {
	db = r.resolveDB(db)
	member := new(Member)
	if err := db.NewSelect().
		Model(member).
		Where("code = ?", code).
		Scan(ctx); err != nil {
		return nil, notFound(err, "member by code")
	}
	return member, nil
}

// GetClubMember retrieves a member by its code within one club.
func (r *Impl) GetClubMember(ctx context.Context, db bun.IDB, clubUUID uuid.UUID, code string) (*Member, error) {
	db = r.resolveDB(db)
	member := new(Member)
	if err := db.NewSelect().
		Model(member).
		Where("code = ?", code).
		Where("club_uuid = ?", clubUUID).
		Scan(ctx); err != nil {
		return nil, notFound(err, "club member")
	}
	return member, nil
}

// GetBeltByLabel retrieves a belt level by label, ignoring case.
func (r *Impl) GetBeltByLabel(ctx context.Context, db bun.IDB, label string) (*BeltLevel, error) {
	db = r.resolveDB(db)
	belt := new(BeltLevel)
	if err := db.NewSelect().
		Model(belt).
		Where("lower(label) = lower(?)", label).
		Scan(ctx); err != nil {
		return nil, notFound(err, "belt by label")
	}
	return belt, nil
}

// UpsertExamResult inserts or replaces the result keyed by (test_id, user_id).
func (r *Impl) UpsertExamResult(ctx context.Context, db bun.IDB, result *ExamResult) error {
	db = r.resolveDB(db)
	result.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(result).
		On("CONFLICT (test_id, user_id) DO UPDATE").
		Set("import_id = EXCLUDED.import_id").
		Set("club_uuid = EXCLUDED.club_uuid").
		Set("belt_uuid = EXCLUDED.belt_uuid").
		Set("full_name = EXCLUDED.full_name").
		Set("gender = EXCLUDED.gender").
		Set("date_of_birth = EXCLUDED.date_of_birth").
		Set("basic_technique = EXCLUDED.basic_technique").
		Set("poomsae = EXCLUDED.poomsae").
		Set("sparring = EXCLUDED.sparring").
		Set("self_defense = EXCLUDED.self_defense").
		Set("breaking = EXCLUDED.breaking").
		Set("fitness = EXCLUDED.fitness").
		Set("theory = EXCLUDED.theory").
		Set("discipline = EXCLUDED.discipline").
		Set("spirit = EXCLUDED.spirit").
		Set("composite = EXCLUDED.composite").
		Set("outcome = EXCLUDED.outcome").
		Set("notes = EXCLUDED.notes").
		Set("requested_by = EXCLUDED.requested_by").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert exam result: %w", err)
	}
	return nil
}

// UpsertTestRegistration inserts or replaces the registration keyed by (test_id, user_id).
func (r *Impl) UpsertTestRegistration(ctx context.Context, db bun.IDB, reg *TestRegistration) error {
	db = r.resolveDB(db)
	reg.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(reg).
		On("CONFLICT (test_id, user_id) DO UPDATE").
		Set("import_id = EXCLUDED.import_id").
		Set("club_uuid = EXCLUDED.club_uuid").
		Set("belt_uuid = EXCLUDED.belt_uuid").
		Set("full_name = EXCLUDED.full_name").
		Set("gender = EXCLUDED.gender").
		Set("date_of_birth = EXCLUDED.date_of_birth").
		Set("basic_technique = EXCLUDED.basic_technique").
		Set("poomsae = EXCLUDED.poomsae").
		Set("sparring = EXCLUDED.sparring").
		Set("self_defense = EXCLUDED.self_defense").
		Set("breaking = EXCLUDED.breaking").
		Set("fitness = EXCLUDED.fitness").
		Set("theory = EXCLUDED.theory").
		Set("discipline = EXCLUDED.discipline").
		Set("spirit = EXCLUDED.spirit").
		Set("composite = EXCLUDED.composite").
		Set("status = EXCLUDED.status").
		Set("notes = EXCLUDED.notes").
		Set("requested_by = EXCLUDED.requested_by").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert test registration: %w", err)
	}
	return nil
}

// ListExamResults returns the results of one examination ordered by member name.
func (r *Impl) ListExamResults(ctx context.Context, db bun.IDB, testID int64) ([]ExamResult, error) {
	db = r.resolveDB(db)
	var out []ExamResult
	if err := db.NewSelect().
		Model(&out).
		Where("test_id = ?", testID).
		OrderExpr("full_name ASC, id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list exam results: %w", err)
	}
	return out, nil
}

// ListTestRegistrations returns the registrations of one examination ordered by member name.
func (r *Impl) ListTestRegistrations(ctx context.Context, db bun.IDB, testID int64) ([]TestRegistration, error) {
	db = r.resolveDB(db)
	var out []TestRegistration
	if err := db.NewSelect().
		Model(&out).
		Where("test_id = ?", testID).
		OrderExpr("full_name ASC, id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list test registrations: %w", err)
	}
	return out, nil
}
