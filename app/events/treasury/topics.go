package treasuryevents

// StreamName is the JetStream stream carrying every treasury subject.
const StreamName = "treasury"

const (
	TransferRecordedV1     = "treasury.transfer.recorded.v1"
	TransferSubmittedV1    = "treasury.transfer.submitted.v1"
	TransferSubmitFailedV1 = "treasury.transfer.submit.failed.v1"

	StatementImportRequestedV1 = "treasury.statement.import.requested.v1"
	StatementReconciledV1      = "treasury.statement.reconciled.v1"
	StatementImportFailedV1    = "treasury.statement.import.failed.v1"
)
