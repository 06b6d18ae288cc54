package clubevents

import (
	"time"

	"github.com/google/uuid"

	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// ClubCreateRequestedPayloadV1 carries decoded club creation parameters.
// PayoutIntervalSeconds and FirstPayoutPhrase are alternatives; the phrase is
// parsed relative to the start time when the interval is zero.
type ClubCreateRequestedPayloadV1 struct {
	Name                  string                `json:"name"`
	Description           string                `json:"description,omitempty"`
	Creator               sharedtypes.AccountID `json:"creator"`
	ContributionAmount    sharedtypes.Amount    `json:"contribution_amount"`
	PenaltyAmount         sharedtypes.Amount    `json:"penalty_amount"`
	MaxMembers            int                   `json:"max_members"`
	StartTime             time.Time             `json:"start_time"`
	EndTime               time.Time             `json:"end_time"`
	PayoutIntervalSeconds int64                 `json:"payout_interval_seconds,omitempty"`
	FirstPayoutPhrase     string                `json:"first_payout_phrase,omitempty"`
}

type ClubCreatedPayloadV1 struct {
	Club *clubtypes.ClubSnapshot `json:"club"`
}

type ClubCreationFailedPayloadV1 struct {
	Name    string                `json:"name"`
	Creator sharedtypes.AccountID `json:"creator"`
	Reason  string                `json:"reason"`
	Code    string                `json:"code"`
}

// ClubJoinRequestedPayloadV1 admits an account. AccountKind is resolved by the
// gateway after authentication; the service trusts it.
type ClubJoinRequestedPayloadV1 struct {
	ClubID      uuid.UUID               `json:"club_id"`
	Account     sharedtypes.AccountID   `json:"account"`
	AccountKind sharedtypes.AccountKind `json:"account_kind"`
	PaidPenalty sharedtypes.Amount      `json:"paid_penalty"`
}

type ClubMemberJoinedPayloadV1 struct {
	ClubID         uuid.UUID             `json:"club_id"`
	Account        sharedtypes.AccountID `json:"account"`
	AdmissionIndex int                   `json:"admission_index"`
	MemberCount    int                   `json:"member_count"`
	MaxMembers     int                   `json:"max_members"`
	Phase          string                `json:"phase"`
}

type ClubJoinFailedPayloadV1 struct {
	ClubID  uuid.UUID             `json:"club_id"`
	Account sharedtypes.AccountID `json:"account"`
	Reason  string                `json:"reason"`
	Code    string                `json:"code"`
}

type ClubContributionRequestedPayloadV1 struct {
	ClubID  uuid.UUID             `json:"club_id"`
	Account sharedtypes.AccountID `json:"account"`
	Amount  sharedtypes.Amount    `json:"amount"`
}

type ClubContributionRecordedPayloadV1 struct {
	ClubID             uuid.UUID             `json:"club_id"`
	Account            sharedtypes.AccountID `json:"account"`
	Amount             sharedtypes.Amount    `json:"amount"`
	TotalContributions sharedtypes.Amount    `json:"total_contributions"`
	ContributorCount   int                   `json:"contributor_count"`
}

type ClubContributionFailedPayloadV1 struct {
	ClubID  uuid.UUID             `json:"club_id"`
	Account sharedtypes.AccountID `json:"account"`
	Reason  string                `json:"reason"`
	Code    string                `json:"code"`
}

type ClubWithdrawalOpenRequestedPayloadV1 struct {
	ClubID uuid.UUID             `json:"club_id"`
	Caller sharedtypes.AccountID `json:"caller"`
}

type ClubWithdrawalPhaseOpenedPayloadV1 struct {
	ClubID             uuid.UUID          `json:"club_id"`
	Phase              string             `json:"phase"`
	TotalContributions sharedtypes.Amount `json:"total_contributions"`
	NextWithdrawalTime time.Time          `json:"next_withdrawal_time"`
}

type ClubWithdrawalOpenFailedPayloadV1 struct {
	ClubID uuid.UUID             `json:"club_id"`
	Caller sharedtypes.AccountID `json:"caller"`
	Reason string                `json:"reason"`
	Code   string                `json:"code"`
}

type ClubWithdrawRequestedPayloadV1 struct {
	ClubID  uuid.UUID             `json:"club_id"`
	Account sharedtypes.AccountID `json:"account"`
}

// ClubWithdrawalSettledPayloadV1 reports a settled claim. TransferID points at
// the recorded treasury instruction; CycleCompleted marks the final claim of
// the rotation. Instruction carries the recorded transfer so downstream
// consumers see the treasury detail without a second lookup.
type ClubWithdrawalSettledPayloadV1 struct {
	ClubID         uuid.UUID                          `json:"club_id"`
	Account        sharedtypes.AccountID              `json:"account"`
	Amount         sharedtypes.Amount                 `json:"amount"`
	Cycle          int                                `json:"cycle"`
	TransferID     uuid.UUID                          `json:"transfer_id"`
	CycleCompleted bool                               `json:"cycle_completed"`
	Phase          string                             `json:"phase"`
	Instruction    *treasurytypes.TransferInstruction `json:"instruction,omitempty"`
}

type ClubWithdrawFailedPayloadV1 struct {
	ClubID  uuid.UUID             `json:"club_id"`
	Account sharedtypes.AccountID `json:"account"`
	Reason  string                `json:"reason"`
	Code    string                `json:"code"`
}

type ClubCloseRequestedPayloadV1 struct {
	ClubID uuid.UUID             `json:"club_id"`
	Caller sharedtypes.AccountID `json:"caller"`
}

type ClubClosedPayloadV1 struct {
	ClubID uuid.UUID `json:"club_id"`
	Phase  string    `json:"phase"`
}

type ClubCloseFailedPayloadV1 struct {
	ClubID uuid.UUID             `json:"club_id"`
	Caller sharedtypes.AccountID `json:"caller"`
	Reason string                `json:"reason"`
	Code   string                `json:"code"`
}

type ClubGetRequestedPayloadV1 struct {
	ClubID uuid.UUID `json:"club_id"`
}

type ClubGetResponsePayloadV1 struct {
	Club *clubtypes.ClubSnapshot `json:"club"`
}

type ClubGetFailedPayloadV1 struct {
	ClubID uuid.UUID `json:"club_id"`
	Reason string    `json:"reason"`
	Code   string    `json:"code"`
}

// ClubWithdrawalWindowOpenedPayloadV1 is published by the scheduler when a
// club's next withdrawal window comes due.
type ClubWithdrawalWindowOpenedPayloadV1 struct {
	ClubID        uuid.UUID `json:"club_id"`
	WindowOpensAt time.Time `json:"window_opens_at"`
}

// ClubContributionReminderPayloadV1 lists members still missing from the
// contributor set when the reminder fires.
type ClubContributionReminderPayloadV1 struct {
	ClubID             uuid.UUID               `json:"club_id"`
	PendingAccounts    []sharedtypes.AccountID `json:"pending_accounts"`
	ContributionAmount sharedtypes.Amount      `json:"contribution_amount"`
	EndTime            time.Time               `json:"end_time"`
}
