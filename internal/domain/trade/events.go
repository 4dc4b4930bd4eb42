package trade

import "time"

type OfferProposed struct {
	OfferID    OfferID
	AdID       AdID
	ProposerID string
	At         time.Time
}

func (e OfferProposed) EventName() string     { return "trade.offer_proposed" }
func (e OfferProposed) AggregateID() string   { return string(e.OfferID) }
func (e OfferProposed) OccurredAt() time.Time { return e.At }

type OfferAcceptedEvent struct {
	OfferID OfferID
	AdID    AdID
	At      time.Time
}

func (e OfferAcceptedEvent) EventName() string     { return "trade.offer_accepted" }
func (e OfferAcceptedEvent) AggregateID() string   { return string(e.OfferID) }
func (e OfferAcceptedEvent) OccurredAt() time.Time { return e.At }

type OfferRejectedEvent struct {
	OfferID OfferID
	AdID    AdID
	At      time.Time
}

func (e OfferRejectedEvent) EventName() string     { return "trade.offer_rejected" }
func (e OfferRejectedEvent) AggregateID() string   { return string(e.OfferID) }
func (e OfferRejectedEvent) OccurredAt() time.Time { return e.At }

type AdCompletedEvent struct {
	AdID AdID
	At   time.Time
}

func (e AdCompletedEvent) EventName() string     { return "trade.ad_completed" }
func (e AdCompletedEvent) AggregateID() string   { return string(e.AdID) }
func (e AdCompletedEvent) OccurredAt() time.Time { return e.At }

type AdCancelledEvent struct {
	AdID   AdID
	Reason string
	At     time.Time
}

func (e AdCancelledEvent) EventName() string     { return "trade.ad_cancelled" }
func (e AdCancelledEvent) AggregateID() string   { return string(e.AdID) }
func (e AdCancelledEvent) OccurredAt() time.Time { return e.At }
