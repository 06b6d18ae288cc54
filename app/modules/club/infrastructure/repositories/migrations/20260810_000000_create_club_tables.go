package clubmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating clubs, club_members, and club_cycles tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			// 1. Clubs: immutable configuration plus scalar cycle state
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS clubs (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(100) NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					creator VARCHAR(64) NOT NULL,
					contribution_amount BIGINT NOT NULL,
					penalty_amount BIGINT NOT NULL,
					max_members INT NOT NULL,
					start_time TIMESTAMPTZ NOT NULL,
					end_time TIMESTAMPTZ NOT NULL,
					payout_interval_seconds BIGINT NOT NULL,
					phase VARCHAR(20) NOT NULL DEFAULT 'open',
					total_contributions BIGINT NOT NULL DEFAULT 0,
					penalty_pool BIGINT NOT NULL DEFAULT 0,
					current_cycle INT NOT NULL DEFAULT 1,
					next_receiver VARCHAR(64),
					withdrawal_start_time TIMESTAMPTZ NOT NULL,
					next_withdrawal_time TIMESTAMPTZ,
					last_withdrawal_time TIMESTAMPTZ,
					withdrawal_phase_started BOOLEAN NOT NULL DEFAULT FALSE,
					next_member_index INT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_clubs_creator ON clubs(creator);
				CREATE INDEX IF NOT EXISTS idx_clubs_phase ON clubs(phase);
			`); err != nil {
				return fmt.Errorf("failed to create clubs table: %w", err)
			}

			// 2. Members: one row per admitted account
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS club_members (
					id BIGSERIAL PRIMARY KEY,
					club_id UUID NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
					account VARCHAR(64) NOT NULL,
					admission_index INT NOT NULL,
					joined_at TIMESTAMPTZ NOT NULL,
					contributed_at TIMESTAMPTZ,
					withdrawn_at TIMESTAMPTZ,
					UNIQUE (club_id, account)
				);
				CREATE INDEX IF NOT EXISTS idx_club_members_club_id ON club_members(club_id);
				CREATE INDEX IF NOT EXISTS idx_club_members_account ON club_members(account);
			`); err != nil {
				return fmt.Errorf("failed to create club_members table: %w", err)
			}

			// 3. Cycles: one row per completed rotation
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS club_cycles (
					id BIGSERIAL PRIMARY KEY,
					club_id UUID NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
					cycle INT NOT NULL,
					accounts_paid JSONB NOT NULL DEFAULT '[]'::jsonb,
					completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (club_id, cycle)
				);
			`); err != nil {
				return fmt.Errorf("failed to create club_cycles table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping club_cycles, club_members, and clubs tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS club_cycles;`); err != nil {
				return fmt.Errorf("failed to drop club_cycles table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS club_members;`); err != nil {
				return fmt.Errorf("failed to drop club_members table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS clubs;`); err != nil {
				return fmt.Errorf("failed to drop clubs table: %w", err)
			}
			return nil
		})
	})
}
