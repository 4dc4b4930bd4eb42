package support

import (
	"context"

	"swapmeet/internal/app/uow"
)

// UnitGuard tracks whether a unit of work was started here (managed) or
// joined from the surrounding middleware, and rolls back a managed unit
// that was never committed.
type UnitGuard struct {
	unit      uow.UnitOfWork
	managed   bool
	committed bool
}

// BeginUnit joins the ambient unit of work from context, or starts a new
// one from the factory. The returned context carries the unit either way.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, *UnitGuard, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, &UnitGuard{unit: unit}, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	return unit, execCtx, &UnitGuard{unit: unit, managed: true}, nil
}

// Commit commits a managed unit; joined units are committed by their owner.
func (g *UnitGuard) Commit(ctx context.Context) error {
	if !g.managed {
		g.committed = true
		return nil
	}
	if err := g.unit.Commit(ctx); err != nil {
		return err
	}
	g.committed = true
	return nil
}

// Close rolls back a managed, uncommitted unit. Safe to defer.
func (g *UnitGuard) Close(ctx context.Context) {
	if g == nil || !g.managed || g.committed {
		return
	}
	_ = g.unit.Rollback(ctx)
}
