package clubdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// Club is the clubs table row. Immutable configuration and the scalar cycle
// state live here; per-member state lives in club_members and finished
// rotations in club_cycles.
type Club struct {
	bun.BaseModel `bun:"table:clubs,alias:c"`

	ID                    uuid.UUID             `bun:"id,pk,type:uuid" json:"id"`
	Name                  string                `bun:"name,notnull" json:"name"`
	Description           string                `bun:"description" json:"description"`
	Creator               sharedtypes.AccountID `bun:"creator,notnull" json:"creator"`
	ContributionAmount    sharedtypes.Amount    `bun:"contribution_amount,notnull" json:"contribution_amount"`
	PenaltyAmount         sharedtypes.Amount    `bun:"penalty_amount,notnull" json:"penalty_amount"`
	MaxMembers            int                   `bun:"max_members,notnull" json:"max_members"`
	StartTime             time.Time             `bun:"start_time,notnull" json:"start_time"`
	EndTime               time.Time             `bun:"end_time,notnull" json:"end_time"`
	PayoutIntervalSeconds int64                 `bun:"payout_interval_seconds,notnull" json:"payout_interval_seconds"`

	Phase                  string                 `bun:"phase,notnull,default:'open'" json:"phase"`
	TotalContributions     sharedtypes.Amount     `bun:"total_contributions,notnull,default:0" json:"total_contributions"`
	PenaltyPool            sharedtypes.Amount     `bun:"penalty_pool,notnull,default:0" json:"penalty_pool"`
	CurrentCycle           int                    `bun:"current_cycle,notnull,default:1" json:"current_cycle"`
	NextReceiver           *sharedtypes.AccountID `bun:"next_receiver,nullzero" json:"next_receiver,omitempty"`
	WithdrawalStartTime    time.Time              `bun:"withdrawal_start_time,notnull" json:"withdrawal_start_time"`
	NextWithdrawalTime     time.Time              `bun:"next_withdrawal_time,nullzero" json:"next_withdrawal_time,omitempty"`
	LastWithdrawalTime     time.Time              `bun:"last_withdrawal_time,nullzero" json:"last_withdrawal_time,omitempty"`
	WithdrawalPhaseStarted bool                   `bun:"withdrawal_phase_started,notnull,default:false" json:"withdrawal_phase_started"`
	NextMemberIndex        int                    `bun:"next_member_index,notnull,default:0" json:"next_member_index"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	// ORM relationships
	Members []*ClubMember `bun:"rel:has-many,join:id=club_id" json:"-"`
	Cycles  []*ClubCycle  `bun:"rel:has-many,join:id=club_id" json:"-"`
}

// ClubMember is one admitted account. contributed_at and withdrawn_at stay
// NULL until the account deposits or is paid out, so the two columns double as
// the contributor and withdrawn sets.
type ClubMember struct {
	bun.BaseModel `bun:"table:club_members,alias:cm"`

	ID             int64                 `bun:"id,pk,autoincrement" json:"id"`
	ClubID         uuid.UUID             `bun:"club_id,notnull,type:uuid" json:"club_id"`
	Account        sharedtypes.AccountID `bun:"account,notnull" json:"account"`
	AdmissionIndex int                   `bun:"admission_index,notnull" json:"admission_index"`
	JoinedAt       time.Time             `bun:"joined_at,notnull" json:"joined_at"`
	ContributedAt  *time.Time            `bun:"contributed_at" json:"contributed_at,omitempty"`
	WithdrawnAt    *time.Time            `bun:"withdrawn_at" json:"withdrawn_at,omitempty"`
}

// ClubCycle is one completed rotation: the cycle number and who was paid, in
// withdrawal order.
type ClubCycle struct {
	bun.BaseModel `bun:"table:club_cycles,alias:cc"`

	ID           int64                   `bun:"id,pk,autoincrement" json:"id"`
	ClubID       uuid.UUID               `bun:"club_id,notnull,type:uuid" json:"club_id"`
	Cycle        int                     `bun:"cycle,notnull" json:"cycle"`
	AccountsPaid []sharedtypes.AccountID `bun:"accounts_paid,type:jsonb" json:"accounts_paid"`
	CompletedAt  time.Time               `bun:"completed_at,notnull,default:current_timestamp" json:"completed_at"`
}

// toDomain reconstructs the aggregate from the row and its loaded relations.
// Members must arrive ordered by admission index and cycles by cycle number;
// the queries in this package guarantee both.
func (m *Club) toDomain() *clubdomain.Club {
	club := &clubdomain.Club{
		ID: m.ID,
		Config: clubdomain.Config{
			Name:               m.Name,
			Description:        m.Description,
			Creator:            m.Creator,
			ContributionAmount: m.ContributionAmount,
			PenaltyAmount:      m.PenaltyAmount,
			MaxMembers:         m.MaxMembers,
			StartTime:          m.StartTime,
			EndTime:            m.EndTime,
			PayoutInterval:     time.Duration(m.PayoutIntervalSeconds) * time.Second,
		},
		Phase:                  clubdomain.Phase(m.Phase),
		TotalContributions:     m.TotalContributions,
		PenaltyPool:            m.PenaltyPool,
		CurrentCycle:           m.CurrentCycle,
		NextReceiver:           m.NextReceiver,
		WithdrawalStartTime:    m.WithdrawalStartTime,
		NextWithdrawalTime:     m.NextWithdrawalTime,
		LastWithdrawalTime:     m.LastWithdrawalTime,
		WithdrawalPhaseStarted: m.WithdrawalPhaseStarted,
		NextMemberIndex:        m.NextMemberIndex,
		CreatedAt:              m.CreatedAt,
	}

	for _, mem := range m.Members {
		club.Members = append(club.Members, clubdomain.Member{
			Account:        mem.Account,
			AdmissionIndex: mem.AdmissionIndex,
			JoinedAt:       mem.JoinedAt,
			ContributedAt:  mem.ContributedAt,
			WithdrawnAt:    mem.WithdrawnAt,
		})
	}

	for _, cyc := range m.Cycles {
		club.CompletedCycles = append(club.CompletedCycles, clubdomain.CycleRecord{
			Cycle:        cyc.Cycle,
			AccountsPaid: cyc.AccountsPaid,
		})
	}

	return club
}

// clubRowFromDomain flattens the aggregate's config and scalar state into a
// clubs row. Member and cycle rows are built separately.
func clubRowFromDomain(c *clubdomain.Club) *Club {
	return &Club{
		ID:                     c.ID,
		Name:                   c.Config.Name,
		Description:            c.Config.Description,
		Creator:                c.Config.Creator,
		ContributionAmount:     c.Config.ContributionAmount,
		PenaltyAmount:          c.Config.PenaltyAmount,
		MaxMembers:             c.Config.MaxMembers,
		StartTime:              c.Config.StartTime,
		EndTime:                c.Config.EndTime,
		PayoutIntervalSeconds:  int64(c.Config.PayoutInterval / time.Second),
		Phase:                  string(c.Phase),
		TotalContributions:     c.TotalContributions,
		PenaltyPool:            c.PenaltyPool,
		CurrentCycle:           c.CurrentCycle,
		NextReceiver:           c.NextReceiver,
		WithdrawalStartTime:    c.WithdrawalStartTime,
		NextWithdrawalTime:     c.NextWithdrawalTime,
		LastWithdrawalTime:     c.LastWithdrawalTime,
		WithdrawalPhaseStarted: c.WithdrawalPhaseStarted,
		NextMemberIndex:        c.NextMemberIndex,
		CreatedAt:              c.CreatedAt,
	}
}

func memberRowsFromDomain(c *clubdomain.Club) []*ClubMember {
	rows := make([]*ClubMember, 0, len(c.Members))
	for _, m := range c.Members {
		rows = append(rows, &ClubMember{
			ClubID:         c.ID,
			Account:        m.Account,
			AdmissionIndex: m.AdmissionIndex,
			JoinedAt:       m.JoinedAt,
			ContributedAt:  m.ContributedAt,
			WithdrawnAt:    m.WithdrawnAt,
		})
	}
	return rows
}

func cycleRowsFromDomain(c *clubdomain.Club) []*ClubCycle {
	rows := make([]*ClubCycle, 0, len(c.CompletedCycles))
	for _, rec := range c.CompletedCycles {
		rows = append(rows, &ClubCycle{
			ClubID:       c.ID,
			Cycle:        rec.Cycle,
			AccountsPaid: rec.AccountsPaid,
		})
	}
	return rows
}
