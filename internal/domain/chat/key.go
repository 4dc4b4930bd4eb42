package chat

import (
	"errors"
	"strings"
)

var (
	ErrSelfConversation   = errors.New("chat: conversation requires two distinct participants")
	ErrBadConversationKey = errors.New("chat: malformed conversation key")
)

// keySeparator joins key fields in the transport encoding. Participant and
// trade identifiers are UUIDs, so the separator cannot occur inside a field.
const keySeparator = "::"

// ConversationKey identifies the thread between two participants, optionally
// scoped to a single trade ad. The pair is stored sorted so the key is
// identical no matter which participant computes it. Two participants may
// hold several conversations at once: one per trade plus a trade-less one.
type ConversationKey struct {
	Low     string
	High    string
	TradeID string
}

// ResolveKey derives the canonical key for a participant pair. The tradeID
// may be empty for a direct conversation.
func ResolveKey(a, b, tradeID string) (ConversationKey, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" || a == b {
		return ConversationKey{}, ErrSelfConversation
	}
	if a > b {
		a, b = b, a
	}
	return ConversationKey{Low: a, High: b, TradeID: strings.TrimSpace(tradeID)}, nil
}

func (k ConversationKey) HasTrade() bool {
	return k.TradeID != ""
}

// Counterparty returns the other participant of the pair, or "" when the
// given participant is not part of the conversation.
func (k ConversationKey) Counterparty(participantID string) string {
	switch participantID {
	case k.Low:
		return k.High
	case k.High:
		return k.Low
	default:
		return ""
	}
}

func (k ConversationKey) Involves(participantID string) bool {
	return participantID == k.Low || participantID == k.High
}

// String renders the transport form: low::high or low::high::tradeID.
func (k ConversationKey) String() string {
	if k.TradeID == "" {
		return k.Low + keySeparator + k.High
	}
	return k.Low + keySeparator + k.High + keySeparator + k.TradeID
}

// ParseKey is the inverse of String. It rejects any shape other than two or
// three non-empty fields and normalizes the pair order.
func ParseKey(raw string) (ConversationKey, error) {
	parts := strings.Split(raw, keySeparator)
	switch len(parts) {
	case 2:
		return ResolveKey(parts[0], parts[1], "")
	case 3:
		if strings.TrimSpace(parts[2]) == "" {
			return ConversationKey{}, ErrBadConversationKey
		}
		return ResolveKey(parts[0], parts[1], parts[2])
	default:
		return ConversationKey{}, ErrBadConversationKey
	}
}
