package trade

import (
	"context"
	"errors"
	"time"

	"swapmeet/internal/domain/shared/events"
)

var (
	ErrOwnAd         = errors.New("trade: cannot offer on your own ad")
	ErrAdNotActive   = errors.New("trade: ad is not open for offers")
	ErrNotAdOwner    = errors.New("trade: only the ad owner may resolve the offer")
	ErrOfferResolved = errors.New("trade: offer already resolved")
	ErrOfferNotFound = errors.New("trade: offer not found")
)

type OfferID string

type OfferStatus string

const (
	OfferPending  OfferStatus = "PENDING"
	OfferAccepted OfferStatus = "ACCEPTED"
	OfferRejected OfferStatus = "REJECTED"
)

// Offer is one proposal against an ad. It transitions once, terminally,
// from PENDING to ACCEPTED or REJECTED and is never deleted.
type Offer struct {
	ID         OfferID
	AdID       AdID
	ProposerID string
	ImageURL   string
	Status     OfferStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type NewOfferParams struct {
	ID       OfferID
	Ad       *Ad
	Proposer string
	ImageURL string
	Now      time.Time
}

// NewOffer validates the proposal against the ad: the owner cannot offer on
// their own ad, and only an ACTIVE ad accepts offers (one outstanding offer
// process per ad).
func NewOffer(params NewOfferParams) (*Offer, error) {
	if params.Ad == nil {
		return nil, ErrAdNotFound
	}
	if params.Proposer == "" || params.ImageURL == "" {
		return nil, errors.New("trade: proposer and image are required")
	}
	if params.Proposer == params.Ad.OwnerID {
		return nil, ErrOwnAd
	}
	if params.Ad.Status != AdActive {
		return nil, ErrAdNotActive
	}
	now := params.Now.UTC()
	o := &Offer{
		ID:         params.ID,
		AdID:       params.Ad.ID,
		ProposerID: params.Proposer,
		ImageURL:   params.ImageURL,
		Status:     OfferPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	o.Record(OfferProposed{OfferID: o.ID, AdID: o.AdID, ProposerID: o.ProposerID, At: now})
	return o, nil
}

func (o *Offer) Accept(now time.Time) error {
	if o.Status != OfferPending {
		return ErrOfferResolved
	}
	o.Status = OfferAccepted
	o.UpdatedAt = now.UTC()
	o.Record(OfferAcceptedEvent{OfferID: o.ID, AdID: o.AdID, At: o.UpdatedAt})
	return nil
}

func (o *Offer) Reject(now time.Time) error {
	if o.Status != OfferPending {
		return ErrOfferResolved
	}
	o.Status = OfferRejected
	o.UpdatedAt = now.UTC()
	o.Record(OfferRejectedEvent{OfferID: o.ID, AdID: o.AdID, At: o.UpdatedAt})
	return nil
}

// OfferRepository persists offers. Save must compare-and-swap on Version so
// two concurrent resolutions of the same offer cannot both win.
type OfferRepository interface {
	ByID(ctx context.Context, id OfferID) (*Offer, error)
	Save(ctx context.Context, offer *Offer) error
	ListPendingByAd(ctx context.Context, adID AdID) ([]*Offer, error)
	AcceptedByAd(ctx context.Context, adID AdID) (*Offer, error)
}
