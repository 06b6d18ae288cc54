package clubdomain

import (
	"fmt"
	"time"

	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// Config holds the immutable parameters fixed at club creation.
type Config struct {
	Name               string
	Description        string
	Creator            sharedtypes.AccountID
	ContributionAmount sharedtypes.Amount
	PenaltyAmount      sharedtypes.Amount
	MaxMembers         int
	StartTime          time.Time
	EndTime            time.Time
	PayoutInterval     time.Duration
}

// Validate checks the configuration against creation rules. now is the
// creation timestamp supplied by the caller's clock.
func (c Config) Validate(now time.Time) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.Creator == "" {
		return fmt.Errorf("%w: creator account is required", ErrInvalidConfig)
	}
	if c.ContributionAmount <= 0 {
		return fmt.Errorf("%w: contribution amount must be positive", ErrInvalidConfig)
	}
	if c.PenaltyAmount < 0 {
		return fmt.Errorf("%w: penalty amount must not be negative", ErrInvalidConfig)
	}
	if c.MaxMembers < 2 {
		return fmt.Errorf("%w: a club needs at least two members", ErrInvalidConfig)
	}
	if c.PayoutInterval <= 0 {
		return fmt.Errorf("%w: payout interval must be positive", ErrInvalidConfig)
	}
	if !c.StartTime.Before(c.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidConfig)
	}
	if !c.EndTime.After(now) {
		return fmt.Errorf("%w: end time must be in the future", ErrInvalidConfig)
	}
	return nil
}

// WithdrawalStart is the earliest instant the creator may open the withdrawal
// phase: one payout interval past the start time.
func (c Config) WithdrawalStart() time.Time {
	return c.StartTime.Add(c.PayoutInterval)
}
