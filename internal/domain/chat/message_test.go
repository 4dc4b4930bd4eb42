package chat

import (
	"errors"
	"testing"
	"time"
)

func TestNewMessageRejectsEmptyBody(t *testing.T) {
	_, err := NewMessage(NewMessageParams{
		ID:         "m1",
		SenderID:   "u1",
		ReceiverID: "u2",
		Body:       "   ",
		Now:        time.Now(),
	})
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("NewMessage = %v, want ErrEmptyBody", err)
	}
}

func TestNewMessageRecordsEvent(t *testing.T) {
	m, err := NewMessage(NewMessageParams{
		ID:         "m1",
		SenderID:   "u1",
		ReceiverID: "u2",
		Body:       "hi",
		Now:        time.Now(),
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	events := m.PendingEvents()
	if len(events) != 1 || events[0].EventName() != "chat.message_sent" {
		t.Fatalf("pending events = %v", events)
	}
	if m.Kind != KindPlain {
		t.Fatalf("Kind = %q, want plain", m.Kind)
	}
}

func TestNewTradeOfferMessageRendersLegacyBody(t *testing.T) {
	m, err := NewTradeOfferMessage(NewTradeOfferMessageParams{
		ID:         "m2",
		SenderID:   "u1",
		ReceiverID: "u2",
		TradeID:    "ad-1",
		OfferID:    "of-1",
		ImageURL:   "http://img/x.jpg",
		Now:        time.Now(),
	})
	if err != nil {
		t.Fatalf("NewTradeOfferMessage: %v", err)
	}
	if m.Body != "[tradeoffer]http://img/x.jpg|of-1" {
		t.Fatalf("Body = %q", m.Body)
	}
	if m.Kind != KindTradeOffer {
		t.Fatalf("Kind = %q", m.Kind)
	}
}

func TestMarkReadOnlyReceiverOnce(t *testing.T) {
	m, err := NewMessage(NewMessageParams{
		ID: "m3", SenderID: "u1", ReceiverID: "u2", Body: "hi", Now: time.Now(),
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if m.MarkRead("u1") {
		t.Fatalf("sender marked own message read")
	}
	if !m.MarkRead("u2") {
		t.Fatalf("receiver could not mark message read")
	}
	if m.MarkRead("u2") {
		t.Fatalf("second MarkRead reported a change")
	}
}

func TestTagOutcomeOnce(t *testing.T) {
	m, err := NewTradeOfferMessage(NewTradeOfferMessageParams{
		ID: "m4", SenderID: "u1", ReceiverID: "u2", TradeID: "ad-1",
		OfferID: "of-1", ImageURL: "http://img/x.jpg", Now: time.Now(),
	})
	if err != nil {
		t.Fatalf("NewTradeOfferMessage: %v", err)
	}
	if !m.TagOutcome(OutcomeAccepted) {
		t.Fatalf("first TagOutcome failed")
	}
	if m.Body != "[tradeoffer]http://img/x.jpg|of-1|ACCEPTED" {
		t.Fatalf("Body after tag = %q", m.Body)
	}
	if m.TagOutcome(OutcomeRejected) {
		t.Fatalf("second TagOutcome succeeded")
	}
	if m.Offer.Outcome != OutcomeAccepted {
		t.Fatalf("outcome overwritten to %q", m.Offer.Outcome)
	}

	plain, err := NewMessage(NewMessageParams{
		ID: "m5", SenderID: "u1", ReceiverID: "u2", Body: "hi", Now: time.Now(),
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if plain.TagOutcome(OutcomeAccepted) {
		t.Fatalf("tagged a plain message")
	}
}

func TestMessageKeyMatchesResolvedKey(t *testing.T) {
	m, err := NewMessage(NewMessageParams{
		ID: "m6", SenderID: "zeta", ReceiverID: "alpha", Body: "hi", TradeID: "ad-2", Now: time.Now(),
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	want, _ := ResolveKey("alpha", "zeta", "ad-2")
	if m.Key() != want {
		t.Fatalf("Key() = %v, want %v", m.Key(), want)
	}
}
