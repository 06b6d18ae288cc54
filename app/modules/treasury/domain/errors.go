package treasurydomain

import "errors"

var (
	// ErrNotPending rejects a submission attempt on an instruction that
	// already left the pending state.
	ErrNotPending = errors.New("transfer is not pending submission")

	// ErrSubmissionRejected marks a definitive refusal from the settlement
	// provider. The instruction is dead; retrying will not help.
	ErrSubmissionRejected = errors.New("settlement gateway rejected the instruction")

	// ErrInvalidSignature is returned when an instruction's signature does not
	// verify against the signing key.
	ErrInvalidSignature = errors.New("transfer signature is invalid")

	// ErrUnknownFormat rejects statement imports in a format no parser handles.
	ErrUnknownFormat = errors.New("unsupported statement format")

	// ErrMalformedStatement wraps row-level parse failures with detail about
	// the offending line.
	ErrMalformedStatement = errors.New("malformed statement")

	// ErrEmptyStatement rejects imports that parsed to zero rows.
	ErrEmptyStatement = errors.New("statement contains no rows")
)
