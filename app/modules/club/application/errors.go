package clubservice

import (
	"errors"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
)

// Machine-readable codes carried on failure payloads alongside the human
// reason string. Consumers branch on the code, never on the reason.
const (
	CodeInvalidConfig           = "invalid_config"
	CodeNotFound                = "not_found"
	CodeNotOpen                 = "not_open"
	CodeClubClosed              = "club_closed"
	CodeNotStarted              = "not_started"
	CodeClubEnded               = "club_ended"
	CodeNotEnded                = "not_ended"
	CodeClubFull                = "club_full"
	CodeAlreadyMember           = "already_member"
	CodeNotMember               = "not_member"
	CodeWrongPenalty            = "wrong_penalty"
	CodeWrongContribution       = "wrong_contribution"
	CodeNotIndividual           = "not_individual"
	CodeNotContributor          = "not_contributor"
	CodeAlreadyContributed      = "already_contributed"
	CodeAlreadyWithdrawn        = "already_withdrawn"
	CodeUnauthorized            = "unauthorized"
	CodeWithdrawalsAlreadyOpen  = "withdrawals_already_open"
	CodeWithdrawalsNotOpen      = "withdrawals_not_open"
	CodeWithdrawalsNotDue       = "withdrawals_not_due"
	CodeWithdrawalTooSoon       = "withdrawal_too_soon"
	CodeContributionsIncomplete = "contributions_incomplete"
	CodeAlreadyFinalized        = "already_finalized"
	CodeWrongPhase              = "wrong_phase"
	CodeInternal                = "internal"
)

var failureCodes = []struct {
	err  error
	code string
}{
	{clubdomain.ErrInvalidConfig, CodeInvalidConfig},
	{clubdb.ErrNotFound, CodeNotFound},
	{clubdomain.ErrNotOpen, CodeNotOpen},
	{clubdomain.ErrClubClosed, CodeClubClosed},
	{clubdomain.ErrNotStarted, CodeNotStarted},
	{clubdomain.ErrClubEnded, CodeClubEnded},
	{clubdomain.ErrNotEnded, CodeNotEnded},
	{clubdomain.ErrClubFull, CodeClubFull},
	{clubdomain.ErrAlreadyMember, CodeAlreadyMember},
	{clubdomain.ErrNotMember, CodeNotMember},
	{clubdomain.ErrWrongPenalty, CodeWrongPenalty},
	{clubdomain.ErrWrongContribution, CodeWrongContribution},
	{clubdomain.ErrAccountNotIndividual, CodeNotIndividual},
	{clubdomain.ErrNotContributor, CodeNotContributor},
	{clubdomain.ErrAlreadyContributed, CodeAlreadyContributed},
	{clubdomain.ErrAlreadyWithdrawn, CodeAlreadyWithdrawn},
	{clubdomain.ErrUnauthorized, CodeUnauthorized},
	{clubdomain.ErrWithdrawalsAlreadyOpen, CodeWithdrawalsAlreadyOpen},
	{clubdomain.ErrWithdrawalsNotOpen, CodeWithdrawalsNotOpen},
	{clubdomain.ErrWithdrawalsNotDue, CodeWithdrawalsNotDue},
	{clubdomain.ErrWithdrawalTooSoon, CodeWithdrawalTooSoon},
	{clubdomain.ErrContributionsIncomplete, CodeContributionsIncomplete},
	{clubdomain.ErrAlreadyFinalized, CodeAlreadyFinalized},
	{clubdomain.ErrWrongPhase, CodeWrongPhase},
}

// failureCode maps a guard failure to its wire code. ErrInvalidConfig is
// checked via errors.Is because config validation wraps it with detail.
func failureCode(err error) string {
	for _, fc := range failureCodes {
		if errors.Is(err, fc.err) {
			return fc.code
		}
	}
	return CodeInternal
}
