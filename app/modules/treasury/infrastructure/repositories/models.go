package treasurydb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// Transfer is the transfers table row. One row per issued instruction; the
// signature is immutable after insert, only status and updated_at move.
type Transfer struct {
	bun.BaseModel `bun:"table:transfers,alias:t"`

	ID          uuid.UUID             `bun:"id,pk,type:uuid" json:"id"`
	ClubID      uuid.UUID             `bun:"club_id,notnull,type:uuid" json:"club_id"`
	Destination sharedtypes.AccountID `bun:"destination,notnull" json:"destination"`
	Amount      sharedtypes.Amount    `bun:"amount,notnull" json:"amount"`
	Kind        string                `bun:"kind,notnull" json:"kind"`
	Cycle       int                   `bun:"cycle,notnull" json:"cycle"`
	IssuedAt    time.Time             `bun:"issued_at,notnull" json:"issued_at"`
	Signature   string                `bun:"signature,notnull,default:''" json:"signature"`
	Status      string                `bun:"status,notnull,default:'pending'" json:"status"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (m *Transfer) toInstruction() treasurytypes.TransferInstruction {
	return treasurytypes.TransferInstruction{
		ID:          m.ID,
		ClubID:      m.ClubID,
		Destination: m.Destination,
		Amount:      m.Amount,
		Kind:        treasurytypes.TransferKind(m.Kind),
		Cycle:       m.Cycle,
		IssuedAt:    m.IssuedAt,
		Signature:   m.Signature,
		Status:      treasurytypes.TransferStatus(m.Status),
	}
}

func rowFromInstruction(inst treasurytypes.TransferInstruction) *Transfer {
	return &Transfer{
		ID:          inst.ID,
		ClubID:      inst.ClubID,
		Destination: inst.Destination,
		Amount:      inst.Amount,
		Kind:        string(inst.Kind),
		Cycle:       inst.Cycle,
		IssuedAt:    inst.IssuedAt,
		Signature:   inst.Signature,
		Status:      string(inst.Status),
	}
}
