package clubqueue

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalWindowJob announces that a club's withdrawal window has come due.
// OpensAt is part of the args so scheduling the next window for a club is
// never deduplicated against an earlier one.
type WithdrawalWindowJob struct {
	ClubID  uuid.UUID `json:"club_id"`
	OpensAt time.Time `json:"opens_at"`
}

// Kind returns the job type identifier for River
func (WithdrawalWindowJob) Kind() string { return "club_withdrawal_window" }

// ContributionReminderJob nudges members that have not deposited yet. The
// worker snoozes the job while the club is still collecting, so the single
// insert at creation covers the whole deposit window.
type ContributionReminderJob struct {
	ClubID uuid.UUID `json:"club_id"`
}

// Kind returns the job type identifier for River
func (ContributionReminderJob) Kind() string { return "club_contribution_reminder" }

// JobInfo represents information about a scheduled job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	ClubID      string `json:"club_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
