package chat

import (
	"context"
	"fmt"
	"testing"

	domainchat "swapmeet/internal/domain/chat"
	"swapmeet/internal/infra/storage/memory"
)

func seedConversation(t *testing.T, factory memory.Factory, count int) domainchat.ConversationKey {
	t.Helper()
	box := memory.NewOutbox()
	for i := 0; i < count; i++ {
		sendText(t, factory, box, fmt.Sprintf("m%03d", i), "u1", "u2", fmt.Sprintf("msg %d", i))
	}
	key, _ := domainchat.ResolveKey("u1", "u2", "")
	return key
}

func TestHistoryPagesNewestFirst(t *testing.T) {
	factory, _ := newTestFactory()
	key := seedConversation(t, factory, 7)
	handler := &HistoryHandler{UoWFactory: factory}

	page1, err := handler.Handle(context.Background(), HistoryQuery{ConversationKey: key, Page: 1, PageSize: 3})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1.Messages) != 3 || !page1.HasMore {
		t.Fatalf("page 1 = %d messages, HasMore=%v", len(page1.Messages), page1.HasMore)
	}
	// Page 1 holds the newest three, oldest-to-newest within the page.
	if page1.Messages[0].ID != "m004" || page1.Messages[2].ID != "m006" {
		t.Fatalf("page 1 ids = %q..%q", page1.Messages[0].ID, page1.Messages[2].ID)
	}

	page3, err := handler.Handle(context.Background(), HistoryQuery{ConversationKey: key, Page: 3, PageSize: 3})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page3.Messages) != 1 || page3.HasMore {
		t.Fatalf("page 3 = %d messages, HasMore=%v", len(page3.Messages), page3.HasMore)
	}
	if page3.Messages[0].ID != "m000" {
		t.Fatalf("page 3 id = %q", page3.Messages[0].ID)
	}
}

func TestHistoryPagesCoverEverythingOnce(t *testing.T) {
	factory, _ := newTestFactory()
	key := seedConversation(t, factory, 10)
	handler := &HistoryHandler{UoWFactory: factory}

	seen := map[domainchat.MessageID]bool{}
	for page := 1; ; page++ {
		result, err := handler.Handle(context.Background(), HistoryQuery{ConversationKey: key, Page: page, PageSize: 4})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(result.Messages) == 0 {
			break
		}
		for _, m := range result.Messages {
			if seen[m.ID] {
				t.Fatalf("message %s served twice", m.ID)
			}
			seen[m.ID] = true
		}
		if !result.HasMore && len(result.Messages) < 4 {
			break
		}
	}
	if len(seen) != 10 {
		t.Fatalf("pages covered %d of 10 messages", len(seen))
	}
}

func TestHistoryPastEndAndDefaults(t *testing.T) {
	factory, _ := newTestFactory()
	key := seedConversation(t, factory, 2)
	handler := &HistoryHandler{UoWFactory: factory}

	past, err := handler.Handle(context.Background(), HistoryQuery{ConversationKey: key, Page: 5, PageSize: 10})
	if err != nil {
		t.Fatalf("past end: %v", err)
	}
	if len(past.Messages) != 0 || past.HasMore {
		t.Fatalf("past end = %d messages, HasMore=%v", len(past.Messages), past.HasMore)
	}

	// Page and size zero fall back to page 1 with the default size.
	def, err := handler.Handle(context.Background(), HistoryQuery{ConversationKey: key})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if len(def.Messages) != 2 || def.HasMore {
		t.Fatalf("defaults = %d messages, HasMore=%v", len(def.Messages), def.HasMore)
	}
}
