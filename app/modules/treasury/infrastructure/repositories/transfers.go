package treasurydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// ErrNotFound is returned when a transfer is not found.
var ErrNotFound = errors.New("transfer not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new transfer repository.
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

// Insert records a freshly issued instruction.
func (r *Impl) Insert(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) error {
	db = r.resolveDB(db)
	row := rowFromInstruction(instruction)
	if _, err := db.NewInsert().
		Model(row).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

// GetByID loads one instruction.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
	return r.get(ctx, r.resolveDB(db), id, false)
}

// GetByIDForUpdate loads an instruction and locks its row until the
// surrounding transaction ends.
func (r *Impl) GetByIDForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
	return r.get(ctx, r.resolveDB(db), id, true)
}

func (r *Impl) get(ctx context.Context, db bun.IDB, id uuid.UUID, forUpdate bool) (treasurytypes.TransferInstruction, error) {
	row := new(Transfer)
	q := db.NewSelect().
		Model(row).
		Where("t.id = ?", id)
	if forUpdate {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return treasurytypes.TransferInstruction{}, ErrNotFound
		}
		return treasurytypes.TransferInstruction{}, fmt.Errorf("failed to get transfer: %w", err)
	}
	return row.toInstruction(), nil
}

// ListByClub returns a club's instructions ordered by issuance.
func (r *Impl) ListByClub(ctx context.Context, db bun.IDB, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error) {
	db = r.resolveDB(db)

	var rows []*Transfer
	if err := db.NewSelect().
		Model(&rows).
		Where("t.club_id = ?", clubID).
		Order("issued_at ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	instructions := make([]treasurytypes.TransferInstruction, 0, len(rows))
	for _, row := range rows {
		instructions = append(instructions, row.toInstruction())
	}
	return instructions, nil
}

// UpdateStatus moves an instruction through the settlement lifecycle.
func (r *Impl) UpdateStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status treasurytypes.TransferStatus) error {
	db = r.resolveDB(db)

	result, err := db.NewUpdate().
		Model((*Transfer)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update transfer status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
