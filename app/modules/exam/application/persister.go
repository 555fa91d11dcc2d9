package examservice

import (
	"context"
	"database/sql"
	"fmt"

	examdb "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// persister upserts one resolved row per transaction.
type persister struct {
	repo examdb.Repository
	db   *bun.DB
}

func (p *persister) persist(ctx context.Context, kind ImportKind, importID uuid.UUID, requestedBy string, res ResolvedExamResult) error {
	write := func(ctx context.Context, db bun.IDB) error {
		switch kind {
		case KindExamResults:
			return p.repo.UpsertExamResult(ctx, db, toExamResult(importID, requestedBy, res))
		case KindTestRegistrations:
			return p.repo.UpsertTestRegistration(ctx, db, toTestRegistration(importID, requestedBy, res))
		default:
			return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
	}

	if p.db == nil {
		return write(ctx, nil)
	}
	return p.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return write(ctx, tx)
	})
}

func toScoreColumns(s Scores) examdb.ScoreColumns {
	return examdb.ScoreColumns{
		BasicTechnique: s[0],
		Poomsae:        s[1],
		Sparring:       s[2],
		SelfDefense:    s[3],
		Breaking:       s[4],
		Fitness:        s[5],
		Theory:         s[6],
		Discipline:     s[7],
		Spirit:         s[8],
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toExamResult(importID uuid.UUID, requestedBy string, res ResolvedExamResult) *examdb.ExamResult {
	return &examdb.ExamResult{
		ImportID:     importID,
		TestID:       res.Row.TestID,
		UserID:       res.References.MemberID,
		ClubUUID:     res.References.ClubID,
		BeltUUID:     res.References.BeltID,
		FullName:     res.Row.FullName,
		Gender:       optional(res.Row.Gender),
		DateOfBirth:  res.Row.DateOfBirth,
		ScoreColumns: toScoreColumns(res.Row.Scores),
		Composite:    res.Evaluation.Composite,
		Outcome:      string(res.Evaluation.Outcome),
		Notes:        res.Row.Notes,
		RequestedBy:  requestedBy,
	}
}

func toTestRegistration(importID uuid.UUID, requestedBy string, res ResolvedExamResult) *examdb.TestRegistration {
	return &examdb.TestRegistration{
		ImportID:     importID,
		TestID:       res.Row.TestID,
		UserID:       res.References.MemberID,
		ClubUUID:     res.References.ClubID,
		BeltUUID:     res.References.BeltID,
		FullName:     res.Row.FullName,
		Gender:       optional(res.Row.Gender),
		DateOfBirth:  res.Row.DateOfBirth,
		ScoreColumns: toScoreColumns(res.Row.Scores),
		Composite:    res.Evaluation.Composite,
		Status:       string(res.Evaluation.Outcome),
		Notes:        res.Row.Notes,
		RequestedBy:  requestedBy,
	}
}
