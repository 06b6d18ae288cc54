package treasuryhandlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	treasuryservice "github.com/osusu-club/osusu-service/app/modules/treasury/application"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// ------------------------
// Fake Treasury Service
// ------------------------

type FakeTreasuryService struct {
	trace []string

	RecordTransferFunc  func(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error)
	SubmitTransferFunc  func(ctx context.Context, transferID uuid.UUID) (treasuryservice.SubmitTransferResult, error)
	ImportStatementFunc func(ctx context.Context, clubID uuid.UUID, filename, format string, content []byte) (treasuryservice.ImportStatementResult, error)
	ListTransfersFunc   func(ctx context.Context, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error)
}

func NewFakeTreasuryService() *FakeTreasuryService {
	return &FakeTreasuryService{
		trace: []string{},
	}
}

func (f *FakeTreasuryService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeTreasuryService) RecordTransfer(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) (treasurytypes.TransferInstruction, error) {
	f.record("RecordTransfer")
	if f.RecordTransferFunc != nil {
		return f.RecordTransferFunc(ctx, db, instruction)
	}
	return instruction, nil
}

func (f *FakeTreasuryService) SubmitTransfer(ctx context.Context, transferID uuid.UUID) (treasuryservice.SubmitTransferResult, error) {
	f.record("SubmitTransfer")
	if f.SubmitTransferFunc != nil {
		return f.SubmitTransferFunc(ctx, transferID)
	}
	return treasuryservice.SubmitTransferResult{}, nil
}

func (f *FakeTreasuryService) ImportStatement(ctx context.Context, clubID uuid.UUID, filename, format string, content []byte) (treasuryservice.ImportStatementResult, error) {
	f.record("ImportStatement")
	if f.ImportStatementFunc != nil {
		return f.ImportStatementFunc(ctx, clubID, filename, format, content)
	}
	return treasuryservice.ImportStatementResult{}, nil
}

func (f *FakeTreasuryService) ListTransfers(ctx context.Context, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error) {
	f.record("ListTransfers")
	if f.ListTransfersFunc != nil {
		return f.ListTransfersFunc(ctx, clubID)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeTreasuryService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ treasuryservice.Service = (*FakeTreasuryService)(nil)
