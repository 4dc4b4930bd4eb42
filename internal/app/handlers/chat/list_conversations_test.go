package chat

import (
	"context"
	"testing"
	"time"

	domaintrade "swapmeet/internal/domain/trade"
	"swapmeet/internal/infra/storage/memory"
)

func TestListConversationsGroupsAndCounts(t *testing.T) {
	factory, _ := newTestFactory()
	box := memory.NewOutbox()

	// Two threads for u1: one with u2, one with u3. u2's thread has two
	// unread messages for u1 and is the most recent.
	sendText(t, factory, box, "m1", "u1", "u3", "old thread")
	sendText(t, factory, box, "m2", "u2", "u1", "first")
	sendText(t, factory, box, "m3", "u2", "u1", "second")

	handler := &ListConversationsHandler{UoWFactory: factory}
	result, err := handler.Handle(context.Background(), ListConversationsQuery{ParticipantID: "u1"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("got %d conversations, want 2", len(result.Items))
	}

	top := result.Items[0]
	if top.CounterpartyID != "u2" {
		t.Fatalf("most recent thread with %q, want u2", top.CounterpartyID)
	}
	if top.UnreadCount != 2 {
		t.Fatalf("unread = %d, want 2", top.UnreadCount)
	}
	if top.LastMessage == nil || top.LastMessage.ID != "m3" {
		t.Fatalf("last message = %+v", top.LastMessage)
	}

	second := result.Items[1]
	if second.CounterpartyID != "u3" || second.UnreadCount != 0 {
		t.Fatalf("second thread = %+v", second)
	}
}

func TestListConversationsSeparatesTrades(t *testing.T) {
	factory, _ := newTestFactory()
	box := memory.NewOutbox()

	handler := &SendMessageHandler{UoWFactory: factory, Outbox: box}
	for i, tradeID := range []string{"", "ad-1"} {
		_, err := handler.Handle(context.Background(), SendMessageCommand{
			CommandID:  []string{"m1", "m2"}[i],
			SenderID:   "u1",
			ReceiverID: "u2",
			Body:       "hi",
			TradeID:    tradeID,
		})
		if err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	list := &ListConversationsHandler{UoWFactory: factory}
	result, err := list.Handle(context.Background(), ListConversationsQuery{ParticipantID: "u1"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("same pair with and without trade collapsed into %d conversations", len(result.Items))
	}
}

func TestListConversationsAttachesAdSnapshot(t *testing.T) {
	ads := memory.NewAdRepository()
	factory := memory.Factory{
		MessagesRepo: memory.NewMessageRepository(),
		OffersRepo:   memory.NewOfferRepository(),
		AdsRepo:      ads,
	}
	now := time.Now().UTC()
	err := ads.Save(context.Background(), &domaintrade.Ad{
		ID: "ad-1", OwnerID: "u2", Title: "tin rocket", PhotoURL: "http://img/r.jpg",
		Status: domaintrade.AdActive, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed ad: %v", err)
	}

	send := &SendMessageHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	if _, err := send.Handle(context.Background(), SendMessageCommand{
		CommandID: "m1", SenderID: "u1", ReceiverID: "u2", Body: "still available?", TradeID: "ad-1",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := send.Handle(context.Background(), SendMessageCommand{
		CommandID: "m2", SenderID: "u1", ReceiverID: "u2", Body: "hello", TradeID: "ad-missing",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	list := &ListConversationsHandler{UoWFactory: factory}
	result, err := list.Handle(context.Background(), ListConversationsQuery{ParticipantID: "u1"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var withAd, withoutAd int
	for _, conv := range result.Items {
		if conv.Ad != nil {
			withAd++
			if conv.Ad.Title != "tin rocket" {
				t.Fatalf("snapshot = %+v", conv.Ad)
			}
		} else {
			withoutAd++
		}
	}
	if withAd != 1 || withoutAd != 1 {
		t.Fatalf("snapshots attached to %d of %d conversations", withAd, len(result.Items))
	}
}
