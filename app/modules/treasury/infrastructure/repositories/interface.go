package treasurydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// Repository defines the contract for transfer persistence.
type Repository interface {
	// Insert records a freshly issued instruction.
	Insert(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) error

	// GetByID loads one instruction.
	GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error)

	// GetByIDForUpdate loads an instruction and locks its row until the
	// surrounding transaction ends, serializing concurrent submissions.
	GetByIDForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error)

	// ListByClub returns a club's instructions ordered by issuance.
	ListByClub(ctx context.Context, db bun.IDB, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error)

	// UpdateStatus moves an instruction through the settlement lifecycle.
	UpdateStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status treasurytypes.TransferStatus) error
}
