package exammigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

const scoreColumnsDDL = `
					basic_technique SMALLINT CHECK (basic_technique BETWEEN 0 AND 100),
					poomsae SMALLINT CHECK (poomsae BETWEEN 0 AND 100),
					sparring SMALLINT CHECK (sparring BETWEEN 0 AND 100),
					self_defense SMALLINT CHECK (self_defense BETWEEN 0 AND 100),
					breaking SMALLINT CHECK (breaking BETWEEN 0 AND 100),
					fitness SMALLINT CHECK (fitness BETWEEN 0 AND 100),
					theory SMALLINT CHECK (theory BETWEEN 0 AND 100),
					discipline SMALLINT CHECK (discipline BETWEEN 0 AND 100),
					spirit SMALLINT CHECK (spirit BETWEEN 0 AND 100),
					composite NUMERIC(5,2) NOT NULL DEFAULT 0,`

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating exam_results and test_registrations tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS exam_results (
					id BIGSERIAL PRIMARY KEY,
					import_id UUID NOT NULL,
					test_id BIGINT NOT NULL,
					user_id UUID NOT NULL REFERENCES members(uuid),
					club_uuid UUID NOT NULL REFERENCES clubs(uuid),
					belt_uuid UUID NOT NULL REFERENCES belt_levels(uuid),
					full_name TEXT,
					gender VARCHAR(6),
					date_of_birth DATE,`+scoreColumnsDDL+`
					outcome VARCHAR(16) NOT NULL,
					notes TEXT,
					requested_by TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (test_id, user_id)
				);
				CREATE INDEX IF NOT EXISTS idx_exam_results_test_id ON exam_results(test_id);
			`); err != nil {
				return fmt.Errorf("failed to create exam_results table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS test_registrations (
					id BIGSERIAL PRIMARY KEY,
					import_id UUID NOT NULL,
					test_id BIGINT NOT NULL,
					user_id UUID NOT NULL REFERENCES members(uuid),
					club_uuid UUID NOT NULL REFERENCES clubs(uuid),
					belt_uuid UUID NOT NULL REFERENCES belt_levels(uuid),
					full_name TEXT,
					gender VARCHAR(6),
					date_of_birth DATE,`+scoreColumnsDDL+`
					status VARCHAR(16) NOT NULL,
					notes TEXT,
					requested_by TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (test_id, user_id)
				);
				CREATE INDEX IF NOT EXISTS idx_test_registrations_test_id ON test_registrations(test_id);
			`); err != nil {
				return fmt.Errorf("failed to create test_registrations table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping exam_results and test_registrations tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS test_registrations;
			DROP TABLE IF EXISTS exam_results;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop exam tables: %w", err)
		}
		return nil
	})
}
