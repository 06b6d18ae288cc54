package clubservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// TransferRecorder records an authorized payout. The treasury module
// implements it. The db handle travels with the call so the insert joins the
// withdrawal's transaction: a recording failure rolls the whole claim back.
type TransferRecorder interface {
	RecordTransfer(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error)
}

// Scheduler enqueues the notification jobs that accompany club lifecycle
// changes. CancelClubJobs removes whatever is still pending for a club; it is
// called on close so retired clubs stop generating notifications.
type Scheduler interface {
	ScheduleWithdrawalWindow(ctx context.Context, clubID uuid.UUID, openAt time.Time) error
	ScheduleContributionReminder(ctx context.Context, clubID uuid.UUID, remindAt time.Time) error
	CancelClubJobs(ctx context.Context, clubID uuid.UUID) error
}
