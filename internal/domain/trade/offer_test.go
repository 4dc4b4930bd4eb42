package trade

import (
	"errors"
	"testing"
	"time"
)

func activeAd() *Ad {
	now := time.Now().UTC()
	return &Ad{
		ID:        "ad-1",
		OwnerID:   "owner",
		Title:     "vintage robot",
		Status:    AdActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNewOfferValidations(t *testing.T) {
	ad := activeAd()

	if _, err := NewOffer(NewOfferParams{ID: "of-1", Ad: ad, Proposer: "owner", ImageURL: "http://img/x.jpg", Now: time.Now()}); !errors.Is(err, ErrOwnAd) {
		t.Fatalf("own-ad offer = %v, want ErrOwnAd", err)
	}

	held := activeAd()
	held.Status = AdPending
	if _, err := NewOffer(NewOfferParams{ID: "of-1", Ad: held, Proposer: "buyer", ImageURL: "http://img/x.jpg", Now: time.Now()}); !errors.Is(err, ErrAdNotActive) {
		t.Fatalf("offer on pending ad = %v, want ErrAdNotActive", err)
	}

	if _, err := NewOffer(NewOfferParams{ID: "of-1", Ad: nil, Proposer: "buyer", ImageURL: "http://img/x.jpg", Now: time.Now()}); !errors.Is(err, ErrAdNotFound) {
		t.Fatalf("offer without ad = %v, want ErrAdNotFound", err)
	}
}

func TestOfferLifecycleIsTerminal(t *testing.T) {
	offer, err := NewOffer(NewOfferParams{ID: "of-1", Ad: activeAd(), Proposer: "buyer", ImageURL: "http://img/x.jpg", Now: time.Now()})
	if err != nil {
		t.Fatalf("NewOffer: %v", err)
	}
	if offer.Status != OfferPending {
		t.Fatalf("new offer status = %q", offer.Status)
	}
	if err := offer.Accept(time.Now()); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if offer.Status != OfferAccepted {
		t.Fatalf("status after accept = %q", offer.Status)
	}
	if err := offer.Accept(time.Now()); !errors.Is(err, ErrOfferResolved) {
		t.Fatalf("second Accept = %v, want ErrOfferResolved", err)
	}
	if err := offer.Reject(time.Now()); !errors.Is(err, ErrOfferResolved) {
		t.Fatalf("Reject after accept = %v, want ErrOfferResolved", err)
	}
}

func TestOfferRejectRecordsEvent(t *testing.T) {
	offer, err := NewOffer(NewOfferParams{ID: "of-2", Ad: activeAd(), Proposer: "buyer", ImageURL: "http://img/x.jpg", Now: time.Now()})
	if err != nil {
		t.Fatalf("NewOffer: %v", err)
	}
	offer.ClearEvents()
	if err := offer.Reject(time.Now()); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	events := offer.PendingEvents()
	if len(events) != 1 || events[0].EventName() != "trade.offer_rejected" {
		t.Fatalf("pending events = %v", events)
	}
}
