package treasuryevents

import (
	"github.com/google/uuid"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

type TransferRecordedPayloadV1 struct {
	Instruction treasurytypes.TransferInstruction `json:"instruction"`
}

// TransferSubmittedPayloadV1 announces that a recorded instruction reached the
// settlement gateway.
type TransferSubmittedPayloadV1 struct {
	TransferID uuid.UUID                    `json:"transfer_id"`
	ClubID     uuid.UUID                    `json:"club_id"`
	Status     treasurytypes.TransferStatus `json:"status"`
}

type TransferSubmitFailedPayloadV1 struct {
	TransferID uuid.UUID `json:"transfer_id"`
	ClubID     uuid.UUID `json:"club_id"`
	Reason     string    `json:"reason"`
	Code       string    `json:"code"`
}

// StatementImportRequestedPayloadV1 carries an uploaded bank statement.
// Content is the raw file; json base64-encodes it on the wire. Format is a
// file extension hint ("xlsx", "csv") falling back to the filename suffix.
type StatementImportRequestedPayloadV1 struct {
	ClubID   uuid.UUID `json:"club_id"`
	Filename string    `json:"filename"`
	Format   string    `json:"format,omitempty"`
	Content  []byte    `json:"content"`
}

type StatementReconciledPayloadV1 struct {
	Report treasurytypes.ReconciliationReport `json:"report"`
}

type StatementImportFailedPayloadV1 struct {
	ClubID   uuid.UUID `json:"club_id"`
	Filename string    `json:"filename"`
	Reason   string    `json:"reason"`
	Code     string    `json:"code"`
}
