package treasuryservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasurydb "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/repositories"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// ------------------------
// Fake Transfer Repo
// ------------------------

type FakeTransferRepo struct {
	trace    []string
	Inserted []treasurytypes.TransferInstruction
	Statuses map[uuid.UUID]treasurytypes.TransferStatus

	InsertFunc           func(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) error
	GetByIDFunc          func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error)
	GetByIDForUpdateFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error)
	ListByClubFunc       func(ctx context.Context, db bun.IDB, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error)
	UpdateStatusFunc     func(ctx context.Context, db bun.IDB, id uuid.UUID, status treasurytypes.TransferStatus) error
}

func NewFakeTransferRepo() *FakeTransferRepo {
	return &FakeTransferRepo{
		trace:    []string{},
		Statuses: map[uuid.UUID]treasurytypes.TransferStatus{},
	}
}

func (f *FakeTransferRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeTransferRepo) Insert(ctx context.Context, db bun.IDB, instruction treasurytypes.TransferInstruction) error {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, instruction)
	}
	f.Inserted = append(f.Inserted, instruction)
	return nil
}

func (f *FakeTransferRepo) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return treasurytypes.TransferInstruction{}, treasurydb.ErrNotFound
}

func (f *FakeTransferRepo) GetByIDForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (treasurytypes.TransferInstruction, error) {
	f.record("GetByIDForUpdate")
	if f.GetByIDForUpdateFunc != nil {
		return f.GetByIDForUpdateFunc(ctx, db, id)
	}
	return treasurytypes.TransferInstruction{}, treasurydb.ErrNotFound
}

func (f *FakeTransferRepo) ListByClub(ctx context.Context, db bun.IDB, clubID uuid.UUID) ([]treasurytypes.TransferInstruction, error) {
	f.record("ListByClub")
	if f.ListByClubFunc != nil {
		return f.ListByClubFunc(ctx, db, clubID)
	}
	return nil, nil
}

func (f *FakeTransferRepo) UpdateStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status treasurytypes.TransferStatus) error {
	f.record("UpdateStatus")
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, db, id, status)
	}
	f.Statuses[id] = status
	return nil
}

// --- Accessors for assertions ---

func (f *FakeTransferRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ treasurydb.Repository = (*FakeTransferRepo)(nil)

// ------------------------
// Fake Club Repo (read side)
// ------------------------

type FakeClubReader struct {
	trace []string

	GetByIDFunc func(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error)
}

func NewFakeClubReader() *FakeClubReader {
	return &FakeClubReader{
		trace: []string{},
	}
}

func (f *FakeClubReader) GetByID(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
	f.trace = append(f.trace, "GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, clubID)
	}
	return nil, clubdb.ErrNotFound
}

// The treasury only reads clubs; the mutating half of the interface must
// never be reached from here.
func (f *FakeClubReader) Create(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
	panic("treasury must not create clubs")
}

func (f *FakeClubReader) GetByIDForUpdate(ctx context.Context, db bun.IDB, clubID uuid.UUID) (*clubdomain.Club, error) {
	panic("treasury must not lock clubs")
}

func (f *FakeClubReader) Save(ctx context.Context, db bun.IDB, club *clubdomain.Club) error {
	panic("treasury must not save clubs")
}

func (f *FakeClubReader) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ clubdb.Repository = (*FakeClubReader)(nil)

// ------------------------
// Fake Settlement Gateway
// ------------------------

type FakeGateway struct {
	trace     []string
	Submitted []treasurytypes.TransferInstruction

	SubmitFunc func(ctx context.Context, instruction treasurytypes.TransferInstruction) error
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		trace: []string{},
	}
}

func (f *FakeGateway) Submit(ctx context.Context, instruction treasurytypes.TransferInstruction) error {
	f.trace = append(f.trace, "Submit")
	if f.SubmitFunc != nil {
		return f.SubmitFunc(ctx, instruction)
	}
	f.Submitted = append(f.Submitted, instruction)
	return nil
}

func (f *FakeGateway) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ SettlementGateway = (*FakeGateway)(nil)
