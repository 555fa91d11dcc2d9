package testutils

import (
	"context"
	"fmt"
	"log"
	"strings"

	examdb "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/repositories"
	exammigrations "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/repositories/migrations"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// appTables lists the tables truncated between tests, children first.
var appTables = []string{"exam_results", "test_registrations", "members", "clubs", "belt_levels"}

// runMigrations creates the migration tables and applies every module migration.
func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, exammigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run exam migrations: %w", err)
	}
	if group.IsZero() {
		log.Println("No exam migrations to run")
	} else {
		log.Printf("Ran exam migrations group #%d", group.ID)
	}
	return nil
}

// TruncateTables truncates the specified tables
func TruncateTables(ctx context.Context, db bun.IDB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = `"` + table + `"`
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}

// CleanupDatabase truncates all application tables.
func CleanupDatabase(ctx context.Context, db bun.IDB) error {
	return TruncateTables(ctx, db, appTables...)
}

// ReferenceData are the rows SeedReferenceData inserted, keyed by code or label.
type ReferenceData struct {
	Clubs   map[string]uuid.UUID
	Members map[string]uuid.UUID
	Belts   map[string]uuid.UUID
}

// SeedReferenceData inserts the clubs, every belt in BeltLabels and one member per
// candidate, registered with the candidate's club.
func SeedReferenceData(ctx context.Context, db bun.IDB, clubCodes []string, candidates []Candidate) (*ReferenceData, error) {
	ref := &ReferenceData{
		Clubs:   make(map[string]uuid.UUID, len(clubCodes)),
		Members: make(map[string]uuid.UUID, len(candidates)),
		Belts:   make(map[string]uuid.UUID, len(BeltLabels)),
	}

	for _, code := range clubCodes {
		club := &examdb.Club{UUID: uuid.New(), Code: code, Name: "Dojo " + code}
		if _, err := db.NewInsert().Model(club).Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed club %s: %w", code, err)
		}
		ref.Clubs[code] = club.UUID
	}

	for i, label := range BeltLabels {
		belt := &examdb.BeltLevel{UUID: uuid.New(), Label: label, Rank: i + 1}
		if _, err := db.NewInsert().Model(belt).Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed belt %s: %w", label, err)
		}
		ref.Belts[label] = belt.UUID
	}

	for _, c := range candidates {
		clubID, ok := ref.Clubs[c.ClubCode]
		if !ok {
			return nil, fmt.Errorf("candidate %s belongs to unknown club %s", c.MemberCode, c.ClubCode)
		}
		if _, seen := ref.Members[c.MemberCode]; seen {
			continue
		}
		member := &examdb.Member{UUID: uuid.New(), ClubUUID: clubID, Code: c.MemberCode, FullName: c.FullName}
		if _, err := db.NewInsert().Model(member).Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed member %s: %w", c.MemberCode, err)
		}
		ref.Members[c.MemberCode] = member.UUID
	}

	return ref, nil
}
