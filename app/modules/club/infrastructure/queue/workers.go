package clubqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	"github.com/osusu-club/osusu-service/internal/clock"
	"github.com/osusu-club/osusu-service/internal/eventbus"
	"github.com/osusu-club/osusu-service/internal/observability/attr"
	"github.com/osusu-club/osusu-service/internal/utils"
)

// WithdrawalWindowWorker publishes the window-opened notification when a
// scheduled withdrawal window comes due. A missing or retired club is a clean
// skip, not an error: jobs outlive the transactions that scheduled them.
type WithdrawalWindowWorker struct {
	river.WorkerDefaults[WithdrawalWindowJob]
	logger   *slog.Logger
	repo     clubdb.Repository
	eventBus eventbus.EventBus
	helpers  utils.Helpers
}

// NewWithdrawalWindowWorker creates a new withdrawal window worker.
func NewWithdrawalWindowWorker(logger *slog.Logger, repo clubdb.Repository, eventBus eventbus.EventBus, helpers utils.Helpers) *WithdrawalWindowWorker {
	return &WithdrawalWindowWorker{
		logger:   logger,
		repo:     repo,
		eventBus: eventBus,
		helpers:  helpers,
	}
}

// Work publishes club.withdrawal.window.opened.v1 for the job's club.
func (w *WithdrawalWindowWorker) Work(ctx context.Context, job *river.Job[WithdrawalWindowJob]) error {
	logger := w.logger.With(
		attr.String("club_id", job.Args.ClubID.String()),
		attr.Time("opens_at", job.Args.OpensAt),
	)

	club, err := w.repo.GetByID(ctx, nil, job.Args.ClubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			logger.InfoContext(ctx, "Club no longer exists, dropping withdrawal window job")
			return nil
		}
		return fmt.Errorf("failed to load club for withdrawal window job: %w", err)
	}

	if club.Phase == clubdomain.PhaseClosed || club.Phase == clubdomain.PhaseCompleted {
		logger.InfoContext(ctx, "Club no longer active, dropping withdrawal window job",
			attr.String("phase", string(club.Phase)))
		return nil
	}

	payload := clubevents.ClubWithdrawalWindowOpenedPayloadV1{
		ClubID:        club.ID,
		WindowOpensAt: job.Args.OpensAt,
	}

	msg, err := w.helpers.CreateNewMessage(payload, clubevents.ClubWithdrawalWindowOpenedV1)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal window message: %w", err)
	}
	if err := w.eventBus.Publish(clubevents.ClubWithdrawalWindowOpenedV1, msg); err != nil {
		return fmt.Errorf("failed to publish withdrawal window notification: %w", err)
	}

	logger.InfoContext(ctx, "Withdrawal window notification published")
	return nil
}

// ContributionReminderWorker publishes deposit reminders while a club is still
// collecting. The job snoozes itself one payout interval at a time; it stops
// once the contributor set completes, the withdrawal phase opens, or the
// deposit window closes.
type ContributionReminderWorker struct {
	river.WorkerDefaults[ContributionReminderJob]
	logger   *slog.Logger
	repo     clubdb.Repository
	eventBus eventbus.EventBus
	helpers  utils.Helpers
	clock    clock.Clock
}

// NewContributionReminderWorker creates a new contribution reminder worker.
func NewContributionReminderWorker(logger *slog.Logger, repo clubdb.Repository, eventBus eventbus.EventBus, helpers utils.Helpers, clk clock.Clock) *ContributionReminderWorker {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &ContributionReminderWorker{
		logger:   logger,
		repo:     repo,
		eventBus: eventBus,
		helpers:  helpers,
		clock:    clk,
	}
}

// Work publishes club.contribution.reminder.v1 when joined members still owe a
// deposit, then reschedules itself if another interval fits in the window.
func (w *ContributionReminderWorker) Work(ctx context.Context, job *river.Job[ContributionReminderJob]) error {
	logger := w.logger.With(attr.String("club_id", job.Args.ClubID.String()))

	club, err := w.repo.GetByID(ctx, nil, job.Args.ClubID)
	if err != nil {
		if errors.Is(err, clubdb.ErrNotFound) {
			logger.InfoContext(ctx, "Club no longer exists, dropping contribution reminder job")
			return nil
		}
		return fmt.Errorf("failed to load club for contribution reminder job: %w", err)
	}

	if club.WithdrawalPhaseStarted || (club.Phase != clubdomain.PhaseOpen && club.Phase != clubdomain.PhaseInProgress) {
		logger.InfoContext(ctx, "Club past the collection stage, stopping reminders",
			attr.String("phase", string(club.Phase)))
		return nil
	}

	now := w.clock.NowUTC()
	if !now.Before(club.Config.EndTime) {
		logger.InfoContext(ctx, "Deposit window closed, stopping reminders")
		return nil
	}

	pending := pendingContributors(club)
	if len(club.Members) == club.Config.MaxMembers && len(pending) == 0 {
		logger.InfoContext(ctx, "All members have contributed, stopping reminders")
		return nil
	}

	if len(pending) > 0 {
		payload := clubevents.ClubContributionReminderPayloadV1{
			ClubID:             club.ID,
			PendingAccounts:    pending,
			ContributionAmount: club.Config.ContributionAmount,
			EndTime:            club.Config.EndTime,
		}

		msg, err := w.helpers.CreateNewMessage(payload, clubevents.ClubContributionReminderV1)
		if err != nil {
			return fmt.Errorf("failed to create contribution reminder message: %w", err)
		}
		if err := w.eventBus.Publish(clubevents.ClubContributionReminderV1, msg); err != nil {
			return fmt.Errorf("failed to publish contribution reminder: %w", err)
		}

		logger.InfoContext(ctx, "Contribution reminder published",
			attr.Int("pending_count", len(pending)))
	}

	if now.Add(club.Config.PayoutInterval).Before(club.Config.EndTime) {
		return river.JobSnooze(club.Config.PayoutInterval)
	}
	return nil
}

// pendingContributors lists joined members with no deposit yet, in admission
// order.
func pendingContributors(club *clubdomain.Club) []sharedtypes.AccountID {
	var out []sharedtypes.AccountID
	for i := range club.Members {
		if club.Members[i].ContributedAt == nil {
			out = append(out, club.Members[i].Account)
		}
	}
	return out
}
