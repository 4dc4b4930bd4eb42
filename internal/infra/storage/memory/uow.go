package memory

import (
	"context"
	"errors"

	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	MessagesRepo domainchat.Repository
	OffersRepo   domaintrade.OfferRepository
	AdsRepo      domaintrade.AdRepository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.MessagesRepo == nil || f.OffersRepo == nil || f.AdsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		messages: f.MessagesRepo,
		offers:   f.OffersRepo,
		ads:      f.AdsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	messages domainchat.Repository
	offers   domaintrade.OfferRepository
	ads      domaintrade.AdRepository
}

func (u *Unit) Messages() domainchat.Repository {
	return u.messages
}

func (u *Unit) Offers() domaintrade.OfferRepository {
	return u.offers
}

func (u *Unit) Ads() domaintrade.AdRepository {
	return u.ads
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
