package clubapi

import (
	"context"

	"github.com/google/uuid"

	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// FakeClubService backs the read handlers; only GetClub is exercised here.
type FakeClubService struct {
	GetClubFunc func(ctx context.Context, clubID uuid.UUID) (clubservice.GetClubResult, error)
}

func (f *FakeClubService) GetClub(ctx context.Context, clubID uuid.UUID) (clubservice.GetClubResult, error) {
	if f.GetClubFunc != nil {
		return f.GetClubFunc(ctx, clubID)
	}
	return clubservice.GetClubResult{}, nil
}

func (f *FakeClubService) CreateClub(ctx context.Context, input clubtypes.CreateClubInput) (clubservice.CreateClubResult, error) {
	return clubservice.CreateClubResult{}, nil
}

func (f *FakeClubService) JoinClub(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, kind sharedtypes.AccountKind, paidPenalty sharedtypes.Amount) (clubservice.JoinClubResult, error) {
	return clubservice.JoinClubResult{}, nil
}

func (f *FakeClubService) Contribute(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID, amount sharedtypes.Amount) (clubservice.ContributeResult, error) {
	return clubservice.ContributeResult{}, nil
}

func (f *FakeClubService) OpenWithdrawals(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.OpenWithdrawalsResult, error) {
	return clubservice.OpenWithdrawalsResult{}, nil
}

func (f *FakeClubService) Withdraw(ctx context.Context, clubID uuid.UUID, account sharedtypes.AccountID) (clubservice.WithdrawResult, error) {
	return clubservice.WithdrawResult{}, nil
}

func (f *FakeClubService) CloseClub(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.CloseClubResult, error) {
	return clubservice.CloseClubResult{}, nil
}

var _ clubservice.Service = (*FakeClubService)(nil)

// FakeTransferLister returns canned treasury instructions.
type FakeTransferLister struct {
	ListTransfersFunc func(ctx context.Context, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error)
}

func (f *FakeTransferLister) ListTransfers(ctx context.Context, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error) {
	if f.ListTransfersFunc != nil {
		return f.ListTransfersFunc(ctx, clubID)
	}
	return nil, nil
}

var _ TransferLister = (*FakeTransferLister)(nil)
