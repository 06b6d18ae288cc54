package treasuryservice

import (
	"context"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// SettlementGateway submits signed instructions to the external settlement
// provider. A treasurydomain.ErrSubmissionRejected return is definitive and
// fails the transfer; any other error is transient and leaves it pending.
type SettlementGateway interface {
	Submit(ctx context.Context, instruction treasurytypes.TransferInstruction) error
}
