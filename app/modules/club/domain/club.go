package clubdomain

import (
	"sort"
	"time"

	"github.com/google/uuid"

	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// Member is one admitted account. ContributedAt and WithdrawnAt double as the
// contributor and withdrawn sets: non-nil means the account is in the set.
type Member struct {
	Account        sharedtypes.AccountID
	AdmissionIndex int
	JoinedAt       time.Time
	ContributedAt  *time.Time
	WithdrawnAt    *time.Time
}

// CycleRecord is one completed rotation: which cycle it was and who was paid,
// in withdrawal order.
type CycleRecord struct {
	Cycle        int
	AccountsPaid []sharedtypes.AccountID
}

// Payout is a settlement the club has authorized but not executed. Moving the
// money is the treasury's job; the club only decides that and how much.
type Payout struct {
	Destination  sharedtypes.AccountID
	Amount       sharedtypes.Amount
	Cycle        int
	AuthorizedAt time.Time
}

// Club is the aggregate for one savings club. Operations mutate it only after
// every guard has passed, so a failed call leaves the value untouched. The
// caller supplies the current time once per operation; the club never reads a
// clock itself.
type Club struct {
	ID     uuid.UUID
	Config Config

	Phase              Phase
	Members            []Member
	TotalContributions sharedtypes.Amount
	PenaltyPool        sharedtypes.Amount

	CurrentCycle    int
	CompletedCycles []CycleRecord
	// NextReceiver is reserved for ordered-rotation payouts. It is persisted
	// and surfaced but no operation populates or consults it yet.
	NextReceiver *sharedtypes.AccountID

	WithdrawalStartTime    time.Time
	NextWithdrawalTime     time.Time
	LastWithdrawalTime     time.Time
	WithdrawalPhaseStarted bool

	NextMemberIndex int
	CreatedAt       time.Time
}

// NewClub validates the configuration and builds the initial state.
func NewClub(id uuid.UUID, cfg Config, now time.Time) (*Club, error) {
	if err := cfg.Validate(now); err != nil {
		return nil, err
	}
	return &Club{
		ID:                  id,
		Config:              cfg,
		Phase:               PhaseOpen,
		CurrentCycle:        1,
		WithdrawalStartTime: cfg.WithdrawalStart(),
		CreatedAt:           now,
	}, nil
}

// member returns the entry for account, or nil.
func (c *Club) member(account sharedtypes.AccountID) *Member {
	for i := range c.Members {
		if c.Members[i].Account == account {
			return &c.Members[i]
		}
	}
	return nil
}

// IsMember reports whether account has been admitted.
func (c *Club) IsMember(account sharedtypes.AccountID) bool {
	return c.member(account) != nil
}

// Contributors lists accounts that have deposited this round, in admission
// order.
func (c *Club) Contributors() []sharedtypes.AccountID {
	var out []sharedtypes.AccountID
	for i := range c.Members {
		if c.Members[i].ContributedAt != nil {
			out = append(out, c.Members[i].Account)
		}
	}
	return out
}

// ContributorCount counts accounts that have deposited this round.
func (c *Club) ContributorCount() int {
	n := 0
	for i := range c.Members {
		if c.Members[i].ContributedAt != nil {
			n++
		}
	}
	return n
}

// WithdrawnAccounts lists paid-out accounts in withdrawal order; admission
// index breaks timestamp ties.
func (c *Club) WithdrawnAccounts() []sharedtypes.AccountID {
	withdrawn := make([]Member, 0, len(c.Members))
	for i := range c.Members {
		if c.Members[i].WithdrawnAt != nil {
			withdrawn = append(withdrawn, c.Members[i])
		}
	}
	sort.SliceStable(withdrawn, func(i, j int) bool {
		if withdrawn[i].WithdrawnAt.Equal(*withdrawn[j].WithdrawnAt) {
			return withdrawn[i].AdmissionIndex < withdrawn[j].AdmissionIndex
		}
		return withdrawn[i].WithdrawnAt.Before(*withdrawn[j].WithdrawnAt)
	})
	out := make([]sharedtypes.AccountID, len(withdrawn))
	for i := range withdrawn {
		out[i] = withdrawn[i].Account
	}
	return out
}

// WithdrawnCount counts accounts that have been paid out.
func (c *Club) WithdrawnCount() int {
	n := 0
	for i := range c.Members {
		if c.Members[i].WithdrawnAt != nil {
			n++
		}
	}
	return n
}

// Join admits an account. Guards, in order: the club is Open; now is within
// [start, end); a slot is free; the account is not already a member; the paid
// penalty matches the configured fee exactly; the account is an individual.
// Admitting the final member advances the club to InProgress.
func (c *Club) Join(account sharedtypes.AccountID, kind sharedtypes.AccountKind, paidPenalty sharedtypes.Amount, now time.Time) (Member, error) {
	if c.Phase != PhaseOpen {
		return Member{}, ErrNotOpen
	}
	if now.Before(c.Config.StartTime) {
		return Member{}, ErrNotStarted
	}
	if !now.Before(c.Config.EndTime) {
		return Member{}, ErrClubEnded
	}
	if len(c.Members) >= c.Config.MaxMembers {
		return Member{}, ErrClubFull
	}
	if c.IsMember(account) {
		return Member{}, ErrAlreadyMember
	}
	if paidPenalty != c.Config.PenaltyAmount {
		return Member{}, ErrWrongPenalty
	}
	if !kind.IsIndividual() {
		return Member{}, ErrAccountNotIndividual
	}

	c.PenaltyPool += paidPenalty
	c.NextMemberIndex++
	m := Member{
		Account:        account,
		AdmissionIndex: c.NextMemberIndex,
		JoinedAt:       now,
	}
	c.Members = append(c.Members, m)

	if len(c.Members) == c.Config.MaxMembers {
		if err := c.transition(PhaseInProgress); err != nil {
			return Member{}, err
		}
	}
	return m, nil
}

// Contribute records the round deposit for account. Guards, in order: the
// amount matches the configured contribution and is positive; now is within
// [start, end]; the club is not Closed; the account is a member; the account
// has not already contributed this round.
func (c *Club) Contribute(account sharedtypes.AccountID, amount sharedtypes.Amount, now time.Time) error {
	if amount <= 0 || amount != c.Config.ContributionAmount {
		return ErrWrongContribution
	}
	if now.Before(c.Config.StartTime) {
		return ErrNotStarted
	}
	if now.After(c.Config.EndTime) {
		return ErrClubEnded
	}
	if c.Phase == PhaseClosed {
		return ErrClubClosed
	}
	m := c.member(account)
	if m == nil {
		return ErrNotMember
	}
	if m.ContributedAt != nil {
		return ErrAlreadyContributed
	}

	t := now
	m.ContributedAt = &t
	c.TotalContributions += amount
	return nil
}

// OpenWithdrawals converts "collecting" into "payable". Creator only; the
// latch is one-shot; every member must have contributed; now must be at or
// past the withdrawal start time; the club must be InProgress.
func (c *Club) OpenWithdrawals(caller sharedtypes.AccountID, now time.Time) error {
	if caller != c.Config.Creator {
		return ErrUnauthorized
	}
	if c.WithdrawalPhaseStarted {
		return ErrWithdrawalsAlreadyOpen
	}
	if c.ContributorCount() != c.Config.MaxMembers {
		return ErrContributionsIncomplete
	}
	if now.Before(c.WithdrawalStartTime) {
		return ErrWithdrawalsNotDue
	}
	if c.Phase != PhaseInProgress {
		return ErrWrongPhase
	}

	if err := c.transition(PhasePending); err != nil {
		return err
	}
	c.NextWithdrawalTime = c.WithdrawalStartTime.Add(c.Config.PayoutInterval)
	c.WithdrawalPhaseStarted = true
	return nil
}

// Withdraw settles one claim. Guards, in order: now is before the end time;
// the payout interval has elapsed since the last withdrawal; the club is not
// Closed; the withdrawal phase has started; the caller is a member, has
// contributed, and has not already withdrawn.
//
// The authorized amount is the entire pool. Each member can claim at most
// once, but the pool is not divided among claimants; see DESIGN.md for the
// payout-sizing decision. The final claim completes the cycle.
func (c *Club) Withdraw(caller sharedtypes.AccountID, now time.Time) (Payout, error) {
	if !now.Before(c.Config.EndTime) {
		return Payout{}, ErrAlreadyFinalized
	}
	if now.Sub(c.LastWithdrawalTime) < c.Config.PayoutInterval {
		return Payout{}, ErrWithdrawalTooSoon
	}
	if c.Phase == PhaseClosed {
		return Payout{}, ErrClubClosed
	}
	if !c.WithdrawalPhaseStarted {
		return Payout{}, ErrWithdrawalsNotOpen
	}
	m := c.member(caller)
	if m == nil {
		return Payout{}, ErrNotMember
	}
	if m.ContributedAt == nil {
		return Payout{}, ErrNotContributor
	}
	if m.WithdrawnAt != nil {
		return Payout{}, ErrAlreadyWithdrawn
	}

	t := now
	m.WithdrawnAt = &t
	c.LastWithdrawalTime = now

	payout := Payout{
		Destination:  caller,
		Amount:       c.TotalContributions,
		Cycle:        c.CurrentCycle,
		AuthorizedAt: now,
	}

	if c.WithdrawnCount() == c.ContributorCount() {
		c.CompletedCycles = append(c.CompletedCycles, CycleRecord{
			Cycle:        c.CurrentCycle,
			AccountsPaid: c.WithdrawnAccounts(),
		})
		if err := c.transition(PhaseCompleted); err != nil {
			return Payout{}, err
		}
	}
	return payout, nil
}

// Close retires an undersubscribed club whose window lapsed while still Open.
// Creator only; the club must be Open and the end time must have passed.
// Closed is terminal; penalty refunds are handled outside the club.
func (c *Club) Close(caller sharedtypes.AccountID, now time.Time) error {
	if caller != c.Config.Creator {
		return ErrUnauthorized
	}
	if c.Phase != PhaseOpen {
		return ErrWrongPhase
	}
	if now.Before(c.Config.EndTime) {
		return ErrNotEnded
	}
	return c.transition(PhaseClosed)
}

// Snapshot builds the wire projection served by the view operation.
func (c *Club) Snapshot() *clubtypes.ClubSnapshot {
	members := make([]clubtypes.MemberInfo, len(c.Members))
	for i, m := range c.Members {
		info := clubtypes.MemberInfo{
			Account:        m.Account,
			AdmissionIndex: m.AdmissionIndex,
			JoinedAt:       m.JoinedAt,
			HasContributed: m.ContributedAt != nil,
			HasWithdrawn:   m.WithdrawnAt != nil,
		}
		if m.ContributedAt != nil {
			t := *m.ContributedAt
			info.ContributedAt = &t
		}
		if m.WithdrawnAt != nil {
			t := *m.WithdrawnAt
			info.WithdrawnAt = &t
		}
		members[i] = info
	}

	cycles := make([]clubtypes.CycleInfo, len(c.CompletedCycles))
	for i, rec := range c.CompletedCycles {
		cycles[i] = clubtypes.CycleInfo{
			Cycle:        rec.Cycle,
			AccountsPaid: append([]sharedtypes.AccountID(nil), rec.AccountsPaid...),
		}
	}

	snap := &clubtypes.ClubSnapshot{
		ClubID:                 c.ID,
		Name:                   c.Config.Name,
		Description:            c.Config.Description,
		Creator:                c.Config.Creator,
		Phase:                  string(c.Phase),
		ContributionAmount:     c.Config.ContributionAmount,
		PenaltyAmount:          c.Config.PenaltyAmount,
		MaxMembers:             c.Config.MaxMembers,
		StartTime:              c.Config.StartTime,
		EndTime:                c.Config.EndTime,
		PayoutIntervalSeconds:  int64(c.Config.PayoutInterval / time.Second),
		Members:                members,
		Contributors:           c.Contributors(),
		WithdrawnAccounts:      c.WithdrawnAccounts(),
		TotalContributions:     c.TotalContributions,
		PenaltyPool:            c.PenaltyPool,
		CurrentCycle:           c.CurrentCycle,
		CompletedCycles:        cycles,
		NextReceiver:           c.NextReceiver,
		WithdrawalPhaseStarted: c.WithdrawalPhaseStarted,
		WithdrawalStartTime:    c.WithdrawalStartTime,
		CreatedAt:              c.CreatedAt,
	}
	if !c.NextWithdrawalTime.IsZero() {
		t := c.NextWithdrawalTime
		snap.NextWithdrawalTime = &t
	}
	if !c.LastWithdrawalTime.IsZero() {
		t := c.LastWithdrawalTime
		snap.LastWithdrawalTime = &t
	}
	return snap
}
