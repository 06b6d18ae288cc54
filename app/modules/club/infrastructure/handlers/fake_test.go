package clubhandlers

import (
	"context"

	"github.com/google/uuid"

	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// ------------------------
// Fake Club Service
// ------------------------

type FakeClubService struct {
	trace []string

	CreateClubFunc      func(ctx context.Context, input clubtypes.CreateClubInput) (clubservice.CreateClubResult, error)
	JoinClubFunc        func(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, kind sharedtypes.AccountKind, paidPenalty sharedtypes.Amount) (clubservice.JoinClubResult, error)
	ContributeFunc      func(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, amount sharedtypes.Amount) (clubservice.ContributeResult, error)
	OpenWithdrawalsFunc func(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.OpenWithdrawalsResult, error)
	WithdrawFunc        func(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID) (clubservice.WithdrawResult, error)
	CloseClubFunc       func(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.CloseClubResult, error)
	GetClubFunc         func(ctx context.Context, clubID uuid.UUID) (clubservice.GetClubResult, error)
}

func NewFakeClubService() *FakeClubService {
	return &FakeClubService{
		trace: []string{},
	}
}

func (f *FakeClubService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeClubService) CreateClub(ctx context.Context, input clubtypes.CreateClubInput) (clubservice.CreateClubResult, error) {
	f.record("CreateClub")
	if f.CreateClubFunc != nil {
		return f.CreateClubFunc(ctx, input)
	}
	return clubservice.CreateClubResult{}, nil
}

func (f *FakeClubService) JoinClub(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, kind sharedtypes.AccountKind, paidPenalty sharedtypes.Amount) (clubservice.JoinClubResult, error) {
	f.record("JoinClub")
	if f.JoinClubFunc != nil {
		return f.JoinClubFunc(ctx, clubID, account, kind, paidPenalty)
	}
	return clubservice.JoinClubResult{}, nil
}

func (f *FakeClubService) Contribute(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, amount sharedtypes.Amount) (clubservice.ContributeResult, error) {
	f.record("Contribute")
	if f.ContributeFunc != nil {
		return f.ContributeFunc(ctx, clubID, account, amount)
	}
	return clubservice.ContributeResult{}, nil
}

func (f *FakeClubService) OpenWithdrawals(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.OpenWithdrawalsResult, error) {
	f.record("OpenWithdrawals")
	if f.OpenWithdrawalsFunc != nil {
		return f.OpenWithdrawalsFunc(ctx, clubID, caller)
	}
	return clubservice.OpenWithdrawalsResult{}, nil
}

func (f *FakeClubService) Withdraw(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID) (clubservice.WithdrawResult, error) {
	f.record("Withdraw")
	if f.WithdrawFunc != nil {
		return f.WithdrawFunc(ctx, clubID, account)
	}
	return clubservice.WithdrawResult{}, nil
}

func (f *FakeClubService) CloseClub(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.CloseClubResult, error) {
	f.record("CloseClub")
	if f.CloseClubFunc != nil {
		return f.CloseClubFunc(ctx, clubID, caller)
	}
	return clubservice.CloseClubResult{}, nil
}

func (f *FakeClubService) GetClub(ctx context.Context, clubID uuid.UUID) (clubservice.GetClubResult, error) {
	f.record("GetClub")
	if f.GetClubFunc != nil {
		return f.GetClubFunc(ctx, clubID)
	}
	return clubservice.GetClubResult{}, nil
}

// --- Accessors for assertions ---

func (f *FakeClubService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ clubservice.Service = (*FakeClubService)(nil)
