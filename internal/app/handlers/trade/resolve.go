package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"swapmeet/internal/app/commands"
	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/middleware"
	"swapmeet/internal/app/outbox"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

const resolveOfferKey = "trade.resolve_offer"

type ResolveOfferCommand struct {
	OfferID         string
	ReviewerID      string
	Approve         bool
	IdempotencyKeyV string
}

func (c ResolveOfferCommand) Key() string { return resolveOfferKey }

func (c ResolveOfferCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ResolveOfferCommand) ResultPrototype() any { return &ResolveOfferResult{} }

type ResolveOfferResult struct {
	OfferID  string `json:"offer_id"`
	Status   string `json:"status"`
	AdStatus string `json:"ad_status"`
}

// ResolveOfferHandler accepts or rejects an offer. Reading the offer,
// moving the ad status, tagging the original trade-offer message and
// notifying the proposer all run inside one unit of work, and the offer
// save compares-and-swaps on its version so a concurrent double-resolve
// loses.
type ResolveOfferHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *ResolveOfferHandler) Handle(ctx context.Context, cmd ResolveOfferCommand) (*ResolveOfferResult, error) {
	unit, execCtx, guard, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer guard.Close(execCtx)

	offer, err := unit.Offers().ByID(execCtx, domaintrade.OfferID(cmd.OfferID))
	if err != nil {
		return nil, err
	}
	ad, err := unit.Ads().ByID(execCtx, offer.AdID)
	if err != nil {
		return nil, err
	}
	if cmd.ReviewerID != ad.OwnerID {
		return nil, domaintrade.ErrNotAdOwner
	}

	now := time.Now().UTC()
	var outcome domainchat.Outcome
	var note string
	if cmd.Approve {
		if err := offer.Accept(now); err != nil {
			return nil, err
		}
		if err := ad.Hold(now); err != nil {
			return nil, err
		}
		outcome = domainchat.OutcomeAccepted
		note = "Your trade offer was accepted. Arrange the exchange here."
	} else {
		if err := offer.Reject(now); err != nil {
			return nil, err
		}
		if err := ad.Reopen(now); err != nil {
			return nil, err
		}
		outcome = domainchat.OutcomeRejected
		note = "Your trade offer was rejected."
	}

	if err := unit.Offers().Save(execCtx, offer); err != nil {
		return nil, err
	}
	if err := unit.Ads().Save(execCtx, ad); err != nil {
		return nil, err
	}
	if err := unit.Messages().AmendOutcome(execCtx, string(offer.ID), outcome); err != nil {
		return nil, err
	}

	notice, err := domainchat.NewSystemMessage(
		domainchat.MessageID(uuid.NewString()),
		ad.OwnerID,
		offer.ProposerID,
		string(ad.ID),
		note,
		now,
	)
	if err != nil {
		return nil, err
	}
	if err := unit.Messages().Append(execCtx, notice); err != nil {
		return nil, err
	}

	if err := drainEvents(execCtx, h.Outbox, h.encoder(), offer, ad, notice); err != nil {
		return nil, err
	}

	if err := guard.Commit(execCtx); err != nil {
		return nil, err
	}
	return &ResolveOfferResult{
		OfferID:  string(offer.ID),
		Status:   string(offer.Status),
		AdStatus: string(ad.Status),
	}, nil
}

func (h *ResolveOfferHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ResolveOfferCommand, *ResolveOfferResult] = (*ResolveOfferHandler)(nil)
var _ middleware.IdempotentCommand = (*ResolveOfferCommand)(nil)
