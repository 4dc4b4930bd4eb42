package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"swapmeet/internal/app/commands"
	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/middleware"
	"swapmeet/internal/app/outbox"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	domainevents "swapmeet/internal/domain/shared/events"
	domaintrade "swapmeet/internal/domain/trade"
)

const proposeTradeKey = "trade.propose"

type ProposeTradeCommand struct {
	CommandID       string
	AdID            string
	ProposerID      string
	ImageURL        string
	IdempotencyKeyV string
}

func (c ProposeTradeCommand) Key() string { return proposeTradeKey }

func (c ProposeTradeCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ProposeTradeCommand) ResultPrototype() any { return &ProposeTradeResult{} }

func (c ProposeTradeCommand) Validate() error {
	if c.CommandID == "" || c.AdID == "" || c.ProposerID == "" || c.ImageURL == "" {
		return errors.New("trade: propose requires command id, ad, proposer and image")
	}
	return nil
}

type ProposeTradeResult struct {
	OfferID   string `json:"offer_id"`
	MessageID string `json:"message_id"`
}

// ProposeTradeHandler creates the offer and appends the trade-offer chat
// message in one unit of work. Offer creation alone leaves the ad ACTIVE;
// only acceptance moves it.
type ProposeTradeHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *ProposeTradeHandler) Handle(ctx context.Context, cmd ProposeTradeCommand) (*ProposeTradeResult, error) {
	unit, execCtx, guard, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer guard.Close(execCtx)

	ad, err := unit.Ads().ByID(execCtx, domaintrade.AdID(cmd.AdID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	offer, err := domaintrade.NewOffer(domaintrade.NewOfferParams{
		ID:       domaintrade.OfferID(cmd.CommandID),
		Ad:       ad,
		Proposer: cmd.ProposerID,
		ImageURL: cmd.ImageURL,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Offers().Save(execCtx, offer); err != nil {
		return nil, err
	}

	message, err := domainchat.NewTradeOfferMessage(domainchat.NewTradeOfferMessageParams{
		ID:         domainchat.MessageID(uuid.NewString()),
		SenderID:   cmd.ProposerID,
		ReceiverID: ad.OwnerID,
		TradeID:    string(ad.ID),
		OfferID:    string(offer.ID),
		ImageURL:   cmd.ImageURL,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Messages().Append(execCtx, message); err != nil {
		return nil, err
	}

	if err := drainEvents(execCtx, h.Outbox, h.encoder(), offer, message); err != nil {
		return nil, err
	}

	if err := guard.Commit(execCtx); err != nil {
		return nil, err
	}
	return &ProposeTradeResult{OfferID: string(offer.ID), MessageID: string(message.ID)}, nil
}

func (h *ProposeTradeHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

type eventCarrier interface {
	PendingEvents() []domainevents.DomainEvent
	ClearEvents()
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, carriers ...eventCarrier) error {
	for _, carrier := range carriers {
		pending := carrier.PendingEvents()
		carrier.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, box, encoder, pending); err != nil {
			return err
		}
	}
	return nil
}

var _ commands.Handler[ProposeTradeCommand, *ProposeTradeResult] = (*ProposeTradeHandler)(nil)
var _ middleware.IdempotentCommand = (*ProposeTradeCommand)(nil)
