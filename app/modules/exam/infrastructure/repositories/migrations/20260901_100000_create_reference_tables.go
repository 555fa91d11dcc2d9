package exammigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating clubs, members and belt_levels tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS clubs (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					code VARCHAR(32) NOT NULL UNIQUE,
					name VARCHAR(100) NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create clubs table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS members (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					club_uuid UUID NOT NULL REFERENCES clubs(uuid),
					code VARCHAR(32) NOT NULL UNIQUE,
					full_name TEXT NOT NULL,
					gender VARCHAR(6),
					date_of_birth DATE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_members_club_uuid ON members(club_uuid);
			`); err != nil {
				return fmt.Errorf("failed to create members table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS belt_levels (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					label VARCHAR(64) NOT NULL UNIQUE,
					rank INTEGER NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_belt_levels_label_lower ON belt_levels(lower(label));
			`); err != nil {
				return fmt.Errorf("failed to create belt_levels table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping clubs, members and belt_levels tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS members;
				DROP TABLE IF EXISTS belt_levels;
				DROP TABLE IF EXISTS clubs;
			`); err != nil {
				return fmt.Errorf("failed to drop reference tables: %w", err)
			}
			return nil
		})
	})
}
