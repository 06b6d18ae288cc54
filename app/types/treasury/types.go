package treasurytypes

import (
	"time"

	"github.com/google/uuid"

	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// TransferKind classifies why money leaves the pool.
type TransferKind string

const (
	TransferKindPayout TransferKind = "payout"
	TransferKindRefund TransferKind = "refund"
)

// TransferStatus tracks an instruction through settlement.
// pending -> submitted -> settled | failed
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusSubmitted TransferStatus = "submitted"
	TransferStatusSettled   TransferStatus = "settled"
	TransferStatusFailed    TransferStatus = "failed"
)

// TransferInstruction is the record a settled withdrawal produces. The service
// signs it and hands it to the settlement gateway; it never moves money itself.
type TransferInstruction struct {
	ID          uuid.UUID             `json:"id"`
	ClubID      uuid.UUID             `json:"club_id"`
	Destination sharedtypes.AccountID `json:"destination"`
	Amount      sharedtypes.Amount    `json:"amount"`
	Kind        TransferKind          `json:"kind"`
	Cycle       int                   `json:"cycle"`
	IssuedAt    time.Time             `json:"issued_at"`
	Signature   string                `json:"signature,omitempty"`
	Status      TransferStatus        `json:"status"`
}

// StatementRow is one normalized line from an imported bank statement.
type StatementRow struct {
	Reference   string                `json:"reference"`
	Account     sharedtypes.AccountID `json:"account"`
	Amount      sharedtypes.Amount    `json:"amount"`
	Direction   string                `json:"direction"`
	PostedAt    time.Time             `json:"posted_at"`
	Description string                `json:"description,omitempty"`
}

const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// ReconciliationEntry pairs a statement row with the transfer it was matched
// against.
type ReconciliationEntry struct {
	Row        StatementRow       `json:"row"`
	TransferID uuid.UUID          `json:"transfer_id"`
	Expected   sharedtypes.Amount `json:"expected"`
}

// ReconciliationReport summarizes a statement import run.
type ReconciliationReport struct {
	ClubID           uuid.UUID             `json:"club_id"`
	Matched          []ReconciliationEntry `json:"matched,omitempty"`
	AmountMismatches []ReconciliationEntry `json:"amount_mismatches,omitempty"`
	Unmatched        []StatementRow        `json:"unmatched,omitempty"`
}
