package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	"swapmeet/internal/infra/storage/memory"
)

func newTestFactory() (memory.Factory, *memory.MessageRepository) {
	messages := memory.NewMessageRepository()
	return memory.Factory{
		MessagesRepo: messages,
		OffersRepo:   memory.NewOfferRepository(),
		AdsRepo:      memory.NewAdRepository(),
	}, messages
}

func sendText(t *testing.T, factory uow.UoWFactory, box *memory.Outbox, id, sender, receiver, body string) {
	t.Helper()
	handler := &SendMessageHandler{UoWFactory: factory, Outbox: box}
	_, err := handler.Handle(context.Background(), SendMessageCommand{
		CommandID:  id,
		SenderID:   sender,
		ReceiverID: receiver,
		Body:       body,
	})
	if err != nil {
		t.Fatalf("send %s: %v", id, err)
	}
}

func TestSendMessageAppendsAndRecordsEvent(t *testing.T) {
	factory, messages := newTestFactory()
	box := memory.NewOutbox()
	handler := &SendMessageHandler{UoWFactory: factory, Outbox: box}

	result, err := handler.Handle(context.Background(), SendMessageCommand{
		CommandID:  "m1",
		SenderID:   "u1",
		ReceiverID: "u2",
		Body:       "hello",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.MessageID != "m1" {
		t.Fatalf("MessageID = %q", result.MessageID)
	}

	stored, err := messages.ByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if stored.Kind != domainchat.KindPlain || stored.Read {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestSendMessageRejectsSelfAndEmpty(t *testing.T) {
	factory, _ := newTestFactory()
	handler := &SendMessageHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

	_, err := handler.Handle(context.Background(), SendMessageCommand{
		CommandID: "m1", SenderID: "u1", ReceiverID: "u1", Body: "hi",
	})
	if !errors.Is(err, domainchat.ErrSelfConversation) {
		t.Fatalf("self send = %v, want ErrSelfConversation", err)
	}

	_, err = handler.Handle(context.Background(), SendMessageCommand{
		CommandID: "m2", SenderID: "u1", ReceiverID: "u2", Body: "  ",
	})
	if !errors.Is(err, domainchat.ErrEmptyBody) {
		t.Fatalf("empty send = %v, want ErrEmptyBody", err)
	}
}

func TestSendMessageClearsSenderUnread(t *testing.T) {
	factory, messages := newTestFactory()
	box := memory.NewOutbox()

	// u2 writes first; u1 replying implies u1 has seen the thread.
	sendText(t, factory, box, "m1", "u2", "u1", "ping")
	sendText(t, factory, box, "m2", "u1", "u2", "pong")

	first, err := messages.ByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if !first.Read {
		t.Fatalf("reply did not clear the sender's unread message")
	}
	second, _ := messages.ByID(context.Background(), "m2")
	if second.Read {
		t.Fatalf("fresh reply already marked read")
	}
}

func TestMarkConversationRead(t *testing.T) {
	factory, _ := newTestFactory()
	box := memory.NewOutbox()
	for i := 0; i < 3; i++ {
		sendText(t, factory, box, fmt.Sprintf("m%d", i), "u1", "u2", "hi")
	}

	key, _ := domainchat.ResolveKey("u1", "u2", "")
	handler := &MarkConversationReadHandler{UoWFactory: factory}
	result, err := handler.Handle(context.Background(), MarkConversationReadCommand{
		ConversationKey: key,
		ReaderID:        "u2",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Updated != 3 {
		t.Fatalf("Updated = %d, want 3", result.Updated)
	}

	result, err = handler.Handle(context.Background(), MarkConversationReadCommand{
		ConversationKey: key,
		ReaderID:        "u2",
	})
	if err != nil || result.Updated != 0 {
		t.Fatalf("repeat = (%d, %v), want (0, nil)", result.Updated, err)
	}
}
