package clubdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
)

// Repository defines the contract for club persistence.
type Repository interface {
	// Create inserts a freshly created club.
	Create(ctx context.Context, db bun.IDB, club *clubdomain.Club) error

	// GetByID loads a club together with its members and completed cycles.
	GetByID(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error)

	// GetByIDForUpdate loads a club like GetByID but locks the clubs row until
	// the surrounding transaction ends. Mutating operations load through this
	// so concurrent claims serialize on the row lock.
	GetByIDForUpdate(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error)

	// Save persists the aggregate after an operation: the clubs row is
	// updated, member rows are upserted, and new cycle records inserted.
	Save(ctx context.Context, db bun.IDB, club *clubdomain.Club) error
}
