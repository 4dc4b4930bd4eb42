package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"swapmeet/internal/domain/shared/events"
)

var (
	ErrEmptyBody       = errors.New("chat: message body must not be empty")
	ErrMessageNotFound = errors.New("chat: message not found")
)

type MessageID string

type MessageKind string

const (
	KindPlain      MessageKind = "plain"
	KindTradeOffer MessageKind = "trade_offer"
	KindSystem     MessageKind = "system"
)

// Outcome is the terminal resolution tag attached to a trade-offer message.
type Outcome string

const (
	OutcomeAccepted Outcome = "ACCEPTED"
	OutcomeRejected Outcome = "REJECTED"
)

// OfferPayload is the structured payload of a trade-offer message. Outcome
// stays empty until the offer is resolved; once set it is never altered.
type OfferPayload struct {
	OfferID  string
	ImageURL string
	Outcome  Outcome
}

// Message is one entry of a conversation. Immutable after creation except
// for the read flag (flipped unread->read once) and, on trade-offer
// messages, the one-time outcome tag.
type Message struct {
	ID         MessageID
	SenderID   string
	ReceiverID string
	Kind       MessageKind
	Body       string
	TradeID    string
	Offer      OfferPayload
	Read       bool
	CreatedAt  time.Time
	events.EventRecorder
}

type NewMessageParams struct {
	ID         MessageID
	SenderID   string
	ReceiverID string
	Body       string
	TradeID    string
	Now        time.Time
}

// NewMessage builds a plain chat message. Duplicate sends are not deduped;
// the log is append-only by contract.
func NewMessage(params NewMessageParams) (*Message, error) {
	key, err := ResolveKey(params.SenderID, params.ReceiverID, params.TradeID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Body) == "" {
		return nil, ErrEmptyBody
	}
	m := &Message{
		ID:         params.ID,
		SenderID:   params.SenderID,
		ReceiverID: params.ReceiverID,
		Kind:       KindPlain,
		Body:       params.Body,
		TradeID:    params.TradeID,
		CreatedAt:  params.Now.UTC(),
	}
	m.Record(MessageSent{MessageID: m.ID, Key: key.String(), SenderID: m.SenderID, ReceiverID: m.ReceiverID, Kind: m.Kind, At: m.CreatedAt})
	return m, nil
}

type NewTradeOfferMessageParams struct {
	ID         MessageID
	SenderID   string
	ReceiverID string
	TradeID    string
	OfferID    string
	ImageURL   string
	Now        time.Time
}

// NewTradeOfferMessage builds the message carrying a trade offer. The body
// holds the legacy delimited rendering for wire compatibility; the payload
// itself is kept structured.
func NewTradeOfferMessage(params NewTradeOfferMessageParams) (*Message, error) {
	key, err := ResolveKey(params.SenderID, params.ReceiverID, params.TradeID)
	if err != nil {
		return nil, err
	}
	if params.OfferID == "" || params.ImageURL == "" {
		return nil, errors.New("chat: trade offer message requires offer id and image")
	}
	m := &Message{
		ID:         params.ID,
		SenderID:   params.SenderID,
		ReceiverID: params.ReceiverID,
		Kind:       KindTradeOffer,
		TradeID:    params.TradeID,
		Offer: OfferPayload{
			OfferID:  params.OfferID,
			ImageURL: params.ImageURL,
		},
		CreatedAt: params.Now.UTC(),
	}
	m.Body = EncodeOfferBody(m.Offer)
	m.Record(MessageSent{MessageID: m.ID, Key: key.String(), SenderID: m.SenderID, ReceiverID: m.ReceiverID, Kind: m.Kind, At: m.CreatedAt})
	return m, nil
}

// NewSystemMessage builds a notification message delivered through the chat
// in lieu of a push channel.
func NewSystemMessage(id MessageID, senderID, receiverID, tradeID, body string, now time.Time) (*Message, error) {
	m, err := NewMessage(NewMessageParams{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		TradeID:    tradeID,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}
	m.Kind = KindSystem
	return m, nil
}

// Key returns the conversation key this message belongs to.
func (m *Message) Key() ConversationKey {
	key, _ := ResolveKey(m.SenderID, m.ReceiverID, m.TradeID)
	return key
}

// MarkRead flips the read flag. Returns false when the flag was already set
// or the reader is not the receiver.
func (m *Message) MarkRead(readerID string) bool {
	if m.Read || m.ReceiverID != readerID {
		return false
	}
	m.Read = true
	return true
}

// TagOutcome appends the outcome to a trade-offer message. Returns false
// (no-op) when the message is not a trade offer or already carries a tag.
func (m *Message) TagOutcome(outcome Outcome) bool {
	if m.Kind != KindTradeOffer || m.Offer.Outcome != "" {
		return false
	}
	m.Offer.Outcome = outcome
	m.Body = EncodeOfferBody(m.Offer)
	return true
}

// Repository is the append-only message store. AmendOutcome and MarkRead
// are idempotent by contract: finding nothing to change is success.
type Repository interface {
	Append(ctx context.Context, m *Message) error
	ByID(ctx context.Context, id MessageID) (*Message, error)
	ListByParticipant(ctx context.Context, participantID string) ([]*Message, error)
	ListByConversation(ctx context.Context, key ConversationKey) ([]*Message, error)
	// LatestTradeOffer returns the most recent trade-offer message carrying
	// the given offer id, or ErrMessageNotFound.
	LatestTradeOffer(ctx context.Context, offerID string) (*Message, error)
	// AmendOutcome tags the latest trade-offer message for offerID. No-op
	// (nil error) when no message matches or a tag is already present.
	AmendOutcome(ctx context.Context, offerID string, outcome Outcome) error
	// MarkRead flips read on the given messages where readerID is the
	// receiver, returning how many were updated.
	MarkRead(ctx context.Context, ids []MessageID, readerID string) (int, error)
}
