package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
	"swapmeet/internal/infra/storage/memory"
)

type fixture struct {
	factory  memory.Factory
	messages *memory.MessageRepository
	offers   *memory.OfferRepository
	ads      *memory.AdRepository
	box      *memory.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		messages: memory.NewMessageRepository(),
		offers:   memory.NewOfferRepository(),
		ads:      memory.NewAdRepository(),
		box:      memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		MessagesRepo: f.messages,
		OffersRepo:   f.offers,
		AdsRepo:      f.ads,
	}
	return f
}

func (f *fixture) seedAd(t *testing.T, id, owner string, status domaintrade.AdStatus) {
	t.Helper()
	now := time.Now().UTC()
	err := f.ads.Save(context.Background(), &domaintrade.Ad{
		ID: domaintrade.AdID(id), OwnerID: owner, Title: "old camera",
		PhotoURL: "http://img/ad.jpg", Status: status, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed ad: %v", err)
	}
}

func (f *fixture) propose(t *testing.T, offerID, adID, proposer string) *ProposeTradeResult {
	t.Helper()
	handler := &ProposeTradeHandler{UoWFactory: f.factory, Outbox: f.box}
	result, err := handler.Handle(context.Background(), ProposeTradeCommand{
		CommandID:  offerID,
		AdID:       adID,
		ProposerID: proposer,
		ImageURL:   "http://img/offer.jpg",
	})
	if err != nil {
		t.Fatalf("propose %s: %v", offerID, err)
	}
	return result
}

func TestProposeTradeCreatesOfferAndMessage(t *testing.T) {
	f := newFixture(t)
	f.seedAd(t, "ad-1", "owner", domaintrade.AdActive)

	result := f.propose(t, "of-1", "ad-1", "buyer")
	if result.OfferID != "of-1" {
		t.Fatalf("OfferID = %q", result.OfferID)
	}

	offer, err := f.offers.ByID(context.Background(), "of-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if offer.Status != domaintrade.OfferPending {
		t.Fatalf("offer status = %q", offer.Status)
	}

	msg, err := f.messages.LatestTradeOffer(context.Background(), "of-1")
	if err != nil {
		t.Fatalf("LatestTradeOffer: %v", err)
	}
	if msg.ReceiverID != "owner" || msg.TradeID != "ad-1" {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Body != "[tradeoffer]http://img/offer.jpg|of-1" {
		t.Fatalf("legacy body = %q", msg.Body)
	}

	// Proposing leaves the ad open for other offers.
	ad, _ := f.ads.ByID(context.Background(), "ad-1")
	if ad.Status != domaintrade.AdActive {
		t.Fatalf("ad status after propose = %q", ad.Status)
	}
}

func TestProposeTradeGuards(t *testing.T) {
	f := newFixture(t)
	f.seedAd(t, "ad-1", "owner", domaintrade.AdActive)
	f.seedAd(t, "ad-2", "owner", domaintrade.AdPending)

	handler := &ProposeTradeHandler{UoWFactory: f.factory, Outbox: f.box}

	_, err := handler.Handle(context.Background(), ProposeTradeCommand{
		CommandID: "of-1", AdID: "ad-1", ProposerID: "owner", ImageURL: "http://img/x.jpg",
	})
	if !errors.Is(err, domaintrade.ErrOwnAd) {
		t.Fatalf("own ad = %v, want ErrOwnAd", err)
	}

	_, err = handler.Handle(context.Background(), ProposeTradeCommand{
		CommandID: "of-2", AdID: "ad-2", ProposerID: "buyer", ImageURL: "http://img/x.jpg",
	})
	if !errors.Is(err, domaintrade.ErrAdNotActive) {
		t.Fatalf("held ad = %v, want ErrAdNotActive", err)
	}

	_, err = handler.Handle(context.Background(), ProposeTradeCommand{
		CommandID: "of-3", AdID: "ghost", ProposerID: "buyer", ImageURL: "http://img/x.jpg",
	})
	if !errors.Is(err, domaintrade.ErrAdNotFound) {
		t.Fatalf("missing ad = %v, want ErrAdNotFound", err)
	}
}

func countKind(t *testing.T, f *fixture, participant string, kind domainchat.MessageKind) int {
	t.Helper()
	msgs, err := f.messages.ListByParticipant(context.Background(), participant)
	if err != nil {
		t.Fatalf("ListByParticipant: %v", err)
	}
	n := 0
	for _, m := range msgs {
		if m.Kind == kind {
			n++
		}
	}
	return n
}
