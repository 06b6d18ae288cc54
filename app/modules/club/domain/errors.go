package clubdomain

import "errors"

// Guard failures returned by club operations. Every precondition is checked in
// a fixed order and the first failure aborts the call with no state change.
// Services should translate these into failure payloads on the outgoing
// failure topic (publish and ack) rather than retrying; none of them can
// succeed on a replay of the same message.
var (
	// ErrInvalidConfig wraps every club configuration validation failure.
	ErrInvalidConfig = errors.New("invalid club configuration")

	// ErrNotOpen is returned when admission is attempted outside the Open phase.
	ErrNotOpen = errors.New("club is not open for admission")

	// ErrClubClosed is returned when a closed-out club is operated on.
	ErrClubClosed = errors.New("club is closed")

	// ErrNotStarted is returned before the club's start time.
	ErrNotStarted = errors.New("club has not started")

	// ErrClubEnded is returned once the club's end time has passed.
	ErrClubEnded = errors.New("club window has ended")

	// ErrNotEnded is returned when close is attempted before the end time.
	ErrNotEnded = errors.New("club window has not ended")

	// ErrClubFull is returned when every membership slot is taken.
	ErrClubFull = errors.New("club is at member capacity")

	ErrAlreadyMember = errors.New("account is already a member")
	ErrNotMember     = errors.New("account is not a member")

	// ErrWrongPenalty is returned when the paid entry fee differs from the
	// configured penalty amount in either direction.
	ErrWrongPenalty = errors.New("paid penalty does not match the configured entry fee")

	// ErrWrongContribution is returned when the deposit differs from the
	// configured contribution amount.
	ErrWrongContribution = errors.New("amount does not match the configured contribution")

	// ErrAccountNotIndividual rejects organization and service identities.
	ErrAccountNotIndividual = errors.New("only individual accounts may join")

	ErrNotContributor     = errors.New("account has not contributed this round")
	ErrAlreadyContributed = errors.New("account has already contributed this round")
	ErrAlreadyWithdrawn   = errors.New("account has already withdrawn")

	// ErrUnauthorized is returned when an owner-only operation is called by
	// anyone other than the club creator.
	ErrUnauthorized = errors.New("caller is not the club creator")

	ErrWithdrawalsAlreadyOpen = errors.New("withdrawal phase already started")
	ErrWithdrawalsNotOpen     = errors.New("withdrawal phase has not started")

	// ErrWithdrawalsNotDue is returned when the withdrawal phase is opened
	// before the computed withdrawal start time.
	ErrWithdrawalsNotDue = errors.New("withdrawal start time has not been reached")

	// ErrWithdrawalTooSoon enforces the payout cadence between claims.
	ErrWithdrawalTooSoon = errors.New("payout interval has not elapsed since the last withdrawal")

	// ErrContributionsIncomplete is returned when the withdrawal phase is
	// opened before every member has contributed.
	ErrContributionsIncomplete = errors.New("not all members have contributed")

	// ErrAlreadyFinalized is returned for withdrawals attempted at or after
	// the club's end time.
	ErrAlreadyFinalized = errors.New("club has been finalized")

	// ErrWrongPhase is returned for any operation invalid in the club's
	// current phase.
	ErrWrongPhase = errors.New("operation not valid in the current phase")
)
