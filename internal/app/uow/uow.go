package uow

import (
	"context"

	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Messages() domainchat.Repository
	Offers() domaintrade.OfferRepository
	Ads() domaintrade.AdRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
