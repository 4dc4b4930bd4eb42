package support

import (
	"context"
	"errors"
	"testing"

	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

type fakeUnit struct {
	commits   int
	rollbacks int
}

func (u *fakeUnit) Messages() domainchat.Repository     { return nil }
func (u *fakeUnit) Offers() domaintrade.OfferRepository { return nil }
func (u *fakeUnit) Ads() domaintrade.AdRepository       { return nil }
func (u *fakeUnit) Commit(ctx context.Context) error    { u.commits++; return nil }
func (u *fakeUnit) Rollback(ctx context.Context) error  { u.rollbacks++; return nil }

type fakeFactory struct {
	unit *fakeUnit
	err  error
}

func (f fakeFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.unit, nil
}

func TestBeginUnitStartsManagedUnit(t *testing.T) {
	unit := &fakeUnit{}
	got, execCtx, guard, err := BeginUnit(context.Background(), fakeFactory{unit: unit}, uow.TxOptions{})
	if err != nil {
		t.Fatalf("BeginUnit: %v", err)
	}
	if got != unit {
		t.Fatalf("wrong unit returned")
	}
	if ambient, ok := uow.FromContext(execCtx); !ok || ambient != uow.UnitOfWork(unit) {
		t.Fatalf("execCtx does not carry the unit")
	}

	if err := guard.Commit(execCtx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	guard.Close(execCtx)
	if unit.commits != 1 || unit.rollbacks != 0 {
		t.Fatalf("commits=%d rollbacks=%d, want 1/0", unit.commits, unit.rollbacks)
	}
}

func TestBeginUnitRollsBackOnClose(t *testing.T) {
	unit := &fakeUnit{}
	_, execCtx, guard, err := BeginUnit(context.Background(), fakeFactory{unit: unit}, uow.TxOptions{})
	if err != nil {
		t.Fatalf("BeginUnit: %v", err)
	}
	guard.Close(execCtx)
	if unit.rollbacks != 1 || unit.commits != 0 {
		t.Fatalf("commits=%d rollbacks=%d, want 0/1", unit.commits, unit.rollbacks)
	}
}

func TestBeginUnitJoinsAmbientUnit(t *testing.T) {
	outer := &fakeUnit{}
	ctx := uow.ContextWithUnitOfWork(context.Background(), outer)

	// The factory must not be touched when a unit is already in flight.
	boom := fakeFactory{err: errors.New("factory used")}
	got, _, guard, err := BeginUnit(ctx, boom, uow.TxOptions{})
	if err != nil {
		t.Fatalf("BeginUnit: %v", err)
	}
	if got != uow.UnitOfWork(outer) {
		t.Fatalf("did not join the ambient unit")
	}

	// A joined guard never commits or rolls back; the owner does.
	if err := guard.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	guard.Close(ctx)
	if outer.commits != 0 || outer.rollbacks != 0 {
		t.Fatalf("joined guard touched the unit: commits=%d rollbacks=%d", outer.commits, outer.rollbacks)
	}
}

func TestBeginUnitWithoutFactory(t *testing.T) {
	_, _, _, err := BeginUnit(context.Background(), nil, uow.TxOptions{})
	if !errors.Is(err, uow.ErrUnitOfWorkMissing) {
		t.Fatalf("BeginUnit(nil factory) = %v, want ErrUnitOfWorkMissing", err)
	}
}
