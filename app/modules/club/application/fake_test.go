package clubservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// ------------------------
// Fake Club Repo
// ------------------------

type FakeClubRepo struct {
	trace []string

	CreateFunc           func(ctx context.Context, db bun.IDB, club *clubdomain.Club) error
	GetByIDFunc          func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error)
	GetByIDForUpdateFunc func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error)
	SaveFunc             func(ctx context.Context, db bun.IDB, club *clubdomain.Club) error
}

func NewFakeClubRepo() *FakeClubRepo {
	return &FakeClubRepo{
		trace: []string{},
	}
}

func (f *FakeClubRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeClubRepo) Create(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, club)
	}
	return nil
}

func (f *FakeClubRepo) GetByID(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, clubID)
	}
	return nil, clubdb.ErrNotFound
}

func (f *FakeClubRepo) GetByIDForUpdate(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
	f.record("GetByIDForUpdate")
	if f.GetByIDForUpdateFunc != nil {
		return f.GetByIDForUpdateFunc(ctx, db, clubID)
	}
	return nil, clubdb.ErrNotFound
}

func (f *FakeClubRepo) Save(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, club)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeClubRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ clubdb.Repository = (*FakeClubRepo)(nil)

// ------------------------
// Fake Transfer Recorder
// ------------------------

type FakeTransferRecorder struct {
	trace    []string
	Recorded []treasurytypes.TransferInstruction

	RecordTransferFunc func(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error)
}

func NewFakeTransferRecorder() *FakeTransferRecorder {
	return &FakeTransferRecorder{
		trace: []string{},
	}
}

func (f *FakeTransferRecorder) RecordTransfer(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error) {
	f.trace = append(f.trace, "RecordTransfer")
	if f.RecordTransferFunc != nil {
		return f.RecordTransferFunc(ctx, db, instruction)
	}
	instruction.ID = uuid.New()
	instruction.Status = treasurytypes.TransferStatusPending
	f.Recorded = append(f.Recorded, instruction)
	return instruction, nil
}

func (f *FakeTransferRecorder) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ TransferRecorder = (*FakeTransferRecorder)(nil)

// ------------------------
// Fake Scheduler
// ------------------------

type FakeScheduler struct {
	trace []string

	ScheduleWithdrawalWindowFunc     func(ctx context.Context, clubID uuid.UUID, openAt time.Time) error
	ScheduleContributionReminderFunc func(ctx context.Context, clubID uuid.UUID, remindAt time.Time) error
	CancelClubJobsFunc               func(ctx context.Context, clubID uuid.UUID) error
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{
		trace: []string{},
	}
}

func (f *FakeScheduler) ScheduleWithdrawalWindow(ctx context.Context, clubID uuid.UUID, openAt time.Time) error {
	f.trace = append(f.trace, "ScheduleWithdrawalWindow")
	if f.ScheduleWithdrawalWindowFunc != nil {
		return f.ScheduleWithdrawalWindowFunc(ctx, clubID, openAt)
	}
	return nil
}

func (f *FakeScheduler) ScheduleContributionReminder(ctx context.Context, clubID uuid.UUID, remindAt time.Time) error {
	f.trace = append(f.trace, "ScheduleContributionReminder")
	if f.ScheduleContributionReminderFunc != nil {
		return f.ScheduleContributionReminderFunc(ctx, clubID, remindAt)
	}
	return nil
}

func (f *FakeScheduler) CancelClubJobs(ctx context.Context, clubID uuid.UUID) error {
	f.trace = append(f.trace, "CancelClubJobs")
	if f.CancelClubJobsFunc != nil {
		return f.CancelClubJobsFunc(ctx, clubID)
	}
	return nil
}

func (f *FakeScheduler) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Scheduler = (*FakeScheduler)(nil)
