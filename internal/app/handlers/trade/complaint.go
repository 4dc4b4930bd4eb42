package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"swapmeet/internal/app/commands"
	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/outbox"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

const fileComplaintKey = "trade.file_complaint"

type FileComplaintCommand struct {
	AdID          string
	ComplainantID string
	Reason        string
}

func (c FileComplaintCommand) Key() string { return fileComplaintKey }

type FileComplaintResult struct {
	AdStatus       string `json:"ad_status"`
	RejectedOffers int    `json:"rejected_offers"`
}

// FileComplaintHandler cancels the ad and rejects every still-pending
// offer on it, tagging their messages and notifying the proposers.
type FileComplaintHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *FileComplaintHandler) Handle(ctx context.Context, cmd FileComplaintCommand) (*FileComplaintResult, error) {
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
	if err := ad.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}
	if err := unit.Ads().Save(execCtx, ad); err != nil {
		return nil, err
	}

	pending, err := unit.Offers().ListPendingByAd(execCtx, ad.ID)
	if err != nil {
		return nil, err
	}
	rejected := 0
	for _, offer := range pending {
		if err := offer.Reject(now); err != nil {
			continue
		}
		if err := unit.Offers().Save(execCtx, offer); err != nil {
			return nil, err
		}
		if err := unit.Messages().AmendOutcome(execCtx, string(offer.ID), domainchat.OutcomeRejected); err != nil {
			return nil, err
		}
		notice, err := domainchat.NewSystemMessage(
			domainchat.MessageID(uuid.NewString()),
			ad.OwnerID,
			offer.ProposerID,
			string(ad.ID),
			"The ad was cancelled after a complaint; your offer was rejected.",
			now,
		)
		if err != nil {
			return nil, err
		}
		if err := unit.Messages().Append(execCtx, notice); err != nil {
			return nil, err
		}
		if err := drainEvents(execCtx, h.Outbox, h.encoder(), offer, notice); err != nil {
			return nil, err
		}
		rejected++
	}

	if err := drainEvents(execCtx, h.Outbox, h.encoder(), ad); err != nil {
		return nil, err
	}

	if err := guard.Commit(execCtx); err != nil {
		return nil, err
	}
	return &FileComplaintResult{AdStatus: string(ad.Status), RejectedOffers: rejected}, nil
}

func (h *FileComplaintHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[FileComplaintCommand, *FileComplaintResult] = (*FileComplaintHandler)(nil)
