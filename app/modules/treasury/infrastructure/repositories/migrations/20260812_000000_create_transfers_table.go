package treasurymigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating transfers table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			// No foreign key to clubs: the club module owns that table and the
			// two migrators must be runnable independently.
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS transfers (
					id UUID PRIMARY KEY,
					club_id UUID NOT NULL,
					destination VARCHAR(64) NOT NULL,
					amount BIGINT NOT NULL,
					kind VARCHAR(10) NOT NULL,
					cycle INT NOT NULL,
					issued_at TIMESTAMPTZ NOT NULL,
					signature TEXT NOT NULL DEFAULT '',
					status VARCHAR(10) NOT NULL DEFAULT 'pending',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_transfers_club_id ON transfers(club_id);
				CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers(status);
			`); err != nil {
				return fmt.Errorf("failed to create transfers table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping transfers table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS transfers;`); err != nil {
				return fmt.Errorf("failed to drop transfers table: %w", err)
			}
			return nil
		})
	})
}
