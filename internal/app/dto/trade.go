package dto

import "time"

// TradeOffer contains a single offer payload.
type TradeOffer struct {
	ID         string    `json:"id"`
	AdID       string    `json:"ad_id"`
	ProposerID string    `json:"proposer_id"`
	ImageURL   string    `json:"image_url,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdSnapshot is the read-side projection of an ad attached to a
// conversation or an offer result.
type AdSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	PhotoURL string `json:"photo_url,omitempty"`
	Status   string `json:"status"`
}

// OfferResolution reports the outcome of an accept or reject request.
type OfferResolution struct {
	OfferID  string `json:"offer_id"`
	Status   string `json:"status"`
	AdStatus string `json:"ad_status"`
}
