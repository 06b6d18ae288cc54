package treasuryservice

import (
	"errors"

	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	treasurydb "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/repositories"
)

// ErrSettlementDisabled is returned when no settlement gateway is configured.
// The failure is terminal so the triggering event is not redelivered forever.
var ErrSettlementDisabled = errors.New("settlement gateway is not configured")

// Machine-readable codes carried on failure payloads alongside the human
// reason string. Consumers branch on the code, never on the reason.
const (
	CodeNotFound           = "not_found"
	CodeClubNotFound       = "club_not_found"
	CodeNotPending         = "not_pending"
	CodeSettlementRejected = "settlement_rejected"
	CodeSettlementDisabled = "settlement_disabled"
	CodeUnknownFormat      = "unknown_format"
	CodeMalformedStatement = "malformed_statement"
	CodeEmptyStatement     = "empty_statement"
	CodeInternal           = "internal"
)

var failureCodes = []struct {
	err  error
	code string
}{
	{treasurydb.ErrNotFound, CodeNotFound},
	{clubdb.ErrNotFound, CodeClubNotFound},
	{treasurydomain.ErrNotPending, CodeNotPending},
	{treasurydomain.ErrSubmissionRejected, CodeSettlementRejected},
	{ErrSettlementDisabled, CodeSettlementDisabled},
	{treasurydomain.ErrUnknownFormat, CodeUnknownFormat},
	{treasurydomain.ErrMalformedStatement, CodeMalformedStatement},
	{treasurydomain.ErrEmptyStatement, CodeEmptyStatement},
}

// failureCode maps a guard failure to its wire code. Matching is through
// errors.Is because parse and gateway errors wrap the sentinels with detail.
func failureCode(err error) string {
	for _, fc := range failureCodes {
		if errors.Is(err, fc.err) {
			return fc.code
		}
	}
	return CodeInternal
}
