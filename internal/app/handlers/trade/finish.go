package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"swapmeet/internal/app/commands"
	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/outbox"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

const finishTradeKey = "trade.finish"

// ErrNotTradeParty is returned when the finishing actor is neither the ad
// owner nor the accepted offer's proposer.
var ErrNotTradeParty = errors.New("trade: only a trade party may finish it")

type FinishTradeCommand struct {
	AdID    string
	ActorID string
}

func (c FinishTradeCommand) Key() string { return finishTradeKey }

type FinishTradeResult struct {
	AdStatus string `json:"ad_status"`
}

// FinishTradeHandler applies the external "trade finished" action: either
// party of an accepted trade closes the ad as COMPLETED.
type FinishTradeHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *FinishTradeHandler) Handle(ctx context.Context, cmd FinishTradeCommand) (*FinishTradeResult, error) {
	unit, execCtx, guard, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer guard.Close(execCtx)

	ad, err := unit.Ads().ByID(execCtx, domaintrade.AdID(cmd.AdID))
	if err != nil {
		return nil, err
	}
	accepted, err := unit.Offers().AcceptedByAd(execCtx, ad.ID)
	if err != nil {
		return nil, err
	}
	if cmd.ActorID != ad.OwnerID && cmd.ActorID != accepted.ProposerID {
		return nil, ErrNotTradeParty
	}

	now := time.Now().UTC()
	if err := ad.Finish(now); err != nil {
		return nil, err
	}
	if err := unit.Ads().Save(execCtx, ad); err != nil {
		return nil, err
	}

	counterparty := accepted.ProposerID
	if cmd.ActorID == counterparty {
		counterparty = ad.OwnerID
	}
	notice, err := domainchat.NewSystemMessage(
		domainchat.MessageID(uuid.NewString()),
		cmd.ActorID,
		counterparty,
		string(ad.ID),
		"The trade was marked as completed.",
		now,
	)
	if err != nil {
		return nil, err
	}
	if err := unit.Messages().Append(execCtx, notice); err != nil {
		return nil, err
	}

	if err := drainEvents(execCtx, h.Outbox, h.encoder(), ad, notice); err != nil {
		return nil, err
	}

	if err := guard.Commit(execCtx); err != nil {
		return nil, err
	}
	return &FinishTradeResult{AdStatus: string(ad.Status)}, nil
}

func (h *FinishTradeHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[FinishTradeCommand, *FinishTradeResult] = (*FinishTradeHandler)(nil)
