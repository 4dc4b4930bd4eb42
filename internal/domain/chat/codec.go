package chat

import "strings"

// Legacy wire form of a trade-offer message body, kept for client
// compatibility: marker, image reference, separator, offer id, and
// optionally a separator plus the outcome token.
const (
	offerBodyMarker = "[tradeoffer]"
	offerFieldSep   = "|"
)

// EncodeOfferBody renders the delimited body for a trade-offer payload.
func EncodeOfferBody(p OfferPayload) string {
	body := offerBodyMarker + p.ImageURL + offerFieldSep + p.OfferID
	if p.Outcome != "" {
		body += offerFieldSep + string(p.Outcome)
	}
	return body
}

// DecodeOfferBody parses a delimited trade-offer body. The second return is
// false when the body is not a trade-offer rendering.
func DecodeOfferBody(body string) (OfferPayload, bool) {
	if !strings.HasPrefix(body, offerBodyMarker) {
		return OfferPayload{}, false
	}
	rest := strings.TrimPrefix(body, offerBodyMarker)
	parts := strings.Split(rest, offerFieldSep)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return OfferPayload{}, false
	}
	payload := OfferPayload{ImageURL: parts[0], OfferID: parts[1]}
	if len(parts) >= 3 {
		switch Outcome(parts[2]) {
		case OutcomeAccepted, OutcomeRejected:
			payload.Outcome = Outcome(parts[2])
		default:
			return OfferPayload{}, false
		}
	}
	return payload, true
}
