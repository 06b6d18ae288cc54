package clubdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
)

// ErrNotFound is returned when a club is not found.
var ErrNotFound = errors.New("club not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new club repository.
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

// Create inserts a freshly created club.
func (r *Impl) Create(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
	db = r.resolveDB(db)
	row := clubRowFromDomain(club)
	if _, err := db.NewInsert().
		Model(row).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert club: %w", err)
	}
	return nil
}

// GetByID loads a club together with its members and completed cycles.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
	return r.get(ctx, r.resolveDB(db), clubID, false)
}

// GetByIDForUpdate loads a club like GetByID but locks the clubs row until the
// surrounding transaction ends.
func (r *Impl) GetByIDForUpdate(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
	return r.get(ctx, r.resolveDB(db), clubID, true)
}

func (r *Impl) get(ctx context.Context, db bun.IDB, clubID uuid.UUID, forUpdate bool) (*clubdomain.Club, error) {
	row := new(Club)
	q := db.NewSelect().
		Model(row).
		Relation("Members", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("admission_index ASC")
		}).
		Relation("Cycles", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("cycle ASC")
		}).
		Where("c.id = ?", clubID)
	if forUpdate {
		// Relations load through separate queries, so the lock lands on the
		// clubs row alone. That is enough: every mutation rewrites the row.
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return row.toDomain(), nil
}

// Save persists the aggregate after an operation. The clubs row is rewritten,
// member rows are upserted on (club_id, account), and completed cycles are
// inserted once on (club_id, cycle).
func (r *Impl) Save(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
	db = r.resolveDB(db)

	row := clubRowFromDomain(club)
	row.UpdatedAt = time.Now()
	result, err := db.NewUpdate().
		Model(row).
		Column("phase", "total_contributions", "penalty_pool", "current_cycle",
			"next_receiver", "next_withdrawal_time", "last_withdrawal_time",
			"withdrawal_phase_started", "next_member_index", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update club: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	if members := memberRowsFromDomain(club); len(members) > 0 {
		if _, err := db.NewInsert().
			Model(&members).
			On("CONFLICT (club_id, account) DO UPDATE").
			Set("contributed_at = EXCLUDED.contributed_at").
			Set("withdrawn_at = EXCLUDED.withdrawn_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to upsert club members: %w", err)
		}
	}

	if cycles := cycleRowsFromDomain(club); len(cycles) > 0 {
		if _, err := db.NewInsert().
			Model(&cycles).
			On("CONFLICT (club_id, cycle) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert club cycles: %w", err)
		}
	}

	return nil
}
