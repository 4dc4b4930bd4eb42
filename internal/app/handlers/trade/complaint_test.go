package trade

import (
	"context"
	"errors"
	"testing"

	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

func TestFileComplaintCancelsAdAndRejectsPending(t *testing.T) {
	f := newFixture(t)
	f.seedAd(t, "ad-1", "owner", domaintrade.AdActive)
	f.propose(t, "of-1", "ad-1", "buyer1")
	f.propose(t, "of-2", "ad-1", "buyer2")

	handler := &FileComplaintHandler{UoWFactory: f.factory, Outbox: f.box}
	result, err := handler.Handle(context.Background(), FileComplaintCommand{
		AdID: "ad-1", ComplainantID: "buyer1", Reason: "item misrepresented",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.AdStatus != string(domaintrade.AdCancelled) || result.RejectedOffers != 2 {
		t.Fatalf("result = %+v", result)
	}

	for _, offerID := range []string{"of-1", "of-2"} {
		offer, err := f.offers.ByID(context.Background(), domaintrade.OfferID(offerID))
		if err != nil {
			t.Fatalf("ByID(%s): %v", offerID, err)
		}
		if offer.Status != domaintrade.OfferRejected {
			t.Fatalf("offer %s status = %q", offerID, offer.Status)
		}
		msg, err := f.messages.LatestTradeOffer(context.Background(), offerID)
		if err != nil {
			t.Fatalf("LatestTradeOffer(%s): %v", offerID, err)
		}
		if msg.Offer.Outcome != domainchat.OutcomeRejected {
			t.Fatalf("offer %s message outcome = %q", offerID, msg.Offer.Outcome)
		}
	}

	if countKind(t, f, "buyer1", domainchat.KindSystem) != 1 || countKind(t, f, "buyer2", domainchat.KindSystem) != 1 {
		t.Fatalf("proposers were not notified of the rejection")
	}
}

func TestFileComplaintSparesResolvedOffers(t *testing.T) {
	f := newFixture(t)
	f.seedAd(t, "ad-1", "owner", domaintrade.AdActive)
	f.propose(t, "of-1", "ad-1", "buyer1")
	f.propose(t, "of-2", "ad-1", "buyer2")

	resolve := &ResolveOfferHandler{UoWFactory: f.factory, Outbox: f.box}
	if _, err := resolve.Handle(context.Background(), ResolveOfferCommand{
		OfferID: "of-1", ReviewerID: "owner", Approve: true,
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	handler := &FileComplaintHandler{UoWFactory: f.factory, Outbox: f.box}
	result, err := handler.Handle(context.Background(), FileComplaintCommand{
		AdID: "ad-1", ComplainantID: "buyer2", Reason: "no-show",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.RejectedOffers != 1 {
		t.Fatalf("RejectedOffers = %d, want 1", result.RejectedOffers)
	}

	accepted, err := f.offers.ByID(context.Background(), "of-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if accepted.Status != domaintrade.OfferAccepted {
		t.Fatalf("accepted offer now %q", accepted.Status)
	}
}

func TestFileComplaintOnTerminalAd(t *testing.T) {
	f := newFixture(t)
	f.seedAd(t, "ad-1", "owner", domaintrade.AdCancelled)

	handler := &FileComplaintHandler{UoWFactory: f.factory, Outbox: f.box}
	_, err := handler.Handle(context.Background(), FileComplaintCommand{
		AdID: "ad-1", ComplainantID: "buyer", Reason: "duplicate",
	})
	if !errors.Is(err, domaintrade.ErrBadAdTransition) {
		t.Fatalf("complaint on cancelled ad = %v, want ErrBadAdTransition", err)
	}
}
