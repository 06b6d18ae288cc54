package sharedtypes

// AccountID identifies a participant account. Accounts are provisioned and
// authenticated upstream; this service only ever sees verified IDs.
type AccountID string

// AccountKind distinguishes human accounts from org/service identities.
// Club admission is restricted to individuals.
type AccountKind string

const (
	AccountKindIndividual   AccountKind = "individual"
	AccountKindOrganization AccountKind = "organization"
	AccountKindService      AccountKind = "service"
)

// IsIndividual reports whether the account belongs to a natural person.
func (k AccountKind) IsIndividual() bool {
	return k == AccountKindIndividual
}

// Amount is a monetary value in minor currency units (kobo, cents).
// All club bookkeeping is integer arithmetic; no floats.
type Amount int64
