package clubtypes

import (
	"time"

	"github.com/google/uuid"

	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// CreateClubInput carries the decoded parameters for club creation.
// Either PayoutInterval or FirstPayoutPhrase must be set; the phrase is parsed
// relative to StartTime ("two weeks after start" style) when the interval is
// zero.
type CreateClubInput struct {
	Name               string
	Description        string
	Creator            sharedtypes.AccountID
	ContributionAmount sharedtypes.Amount
	PenaltyAmount      sharedtypes.Amount
	MaxMembers         int
	StartTime          time.Time
	EndTime            time.Time
	PayoutInterval     time.Duration
	FirstPayoutPhrase  string
}

// MemberInfo is the wire projection of one admitted member. The booleans
// mirror the timestamps for consumers that only need set membership.
type MemberInfo struct {
	Account        sharedtypes.AccountID `json:"account"`
	AdmissionIndex int                   `json:"admission_index"`
	JoinedAt       time.Time             `json:"joined_at"`
	HasContributed bool                  `json:"has_contributed"`
	HasWithdrawn   bool                  `json:"has_withdrawn"`
	ContributedAt  *time.Time            `json:"contributed_at,omitempty"`
	WithdrawnAt    *time.Time            `json:"withdrawn_at,omitempty"`
}

// CycleInfo records one completed rotation cycle and who was paid, in
// withdrawal order.
type CycleInfo struct {
	Cycle        int                     `json:"cycle"`
	AccountsPaid []sharedtypes.AccountID `json:"accounts_paid"`
}

// ClubSnapshot is the read-only projection served by the view operation, over
// NATS and HTTP alike.
type ClubSnapshot struct {
	ClubID                 uuid.UUID               `json:"club_id"`
	Name                   string                  `json:"name"`
	Description            string                  `json:"description,omitempty"`
	Creator                sharedtypes.AccountID   `json:"creator"`
	Phase                  string                  `json:"phase"`
	ContributionAmount     sharedtypes.Amount      `json:"contribution_amount"`
	PenaltyAmount          sharedtypes.Amount      `json:"penalty_amount"`
	MaxMembers             int                     `json:"max_members"`
	StartTime              time.Time               `json:"start_time"`
	EndTime                time.Time               `json:"end_time"`
	PayoutIntervalSeconds  int64                   `json:"payout_interval_seconds"`
	Members                []MemberInfo            `json:"members"`
	Contributors           []sharedtypes.AccountID `json:"contributors"`
	WithdrawnAccounts      []sharedtypes.AccountID `json:"withdrawn_accounts"`
	TotalContributions     sharedtypes.Amount      `json:"total_contributions"`
	PenaltyPool            sharedtypes.Amount      `json:"penalty_pool"`
	CurrentCycle           int                     `json:"current_cycle"`
	CompletedCycles        []CycleInfo             `json:"completed_cycles,omitempty"`
	NextReceiver           *sharedtypes.AccountID  `json:"next_receiver,omitempty"`
	WithdrawalPhaseStarted bool                    `json:"withdrawal_phase_started"`
	WithdrawalStartTime    time.Time               `json:"withdrawal_start_time"`
	NextWithdrawalTime     *time.Time              `json:"next_withdrawal_time,omitempty"`
	LastWithdrawalTime     *time.Time              `json:"last_withdrawal_time,omitempty"`
	CreatedAt              time.Time               `json:"created_at"`
}
