package chat

import (
	"context"
	"sort"

	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/queries"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
)

const historyKey = "chat.history"

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type HistoryQuery struct {
	ConversationKey domainchat.ConversationKey
	Page            int
	PageSize        int
}

func (q HistoryQuery) Key() string { return historyKey }

type HistoryResult struct {
	// Messages are oldest-to-newest within the page.
	Messages []*domainchat.Message
	HasMore  bool
}

type HistoryHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle serves page `Page` (1-indexed) of the conversation, newest pages
// first: page 1 holds the most recent messages. Each page is returned
// oldest-to-newest. A short final page signals the end of history.
func (h *HistoryHandler) Handle(ctx context.Context, query HistoryQuery) (*HistoryResult, error) {
	unit, execCtx, guard, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer guard.Close(execCtx)

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	messages, err := unit.Messages().ListByConversation(execCtx, query.ConversationKey)
	if err != nil {
		return nil, err
	}

	sort.Slice(messages, func(i, j int) bool {
		return laterMessage(messages[i], messages[j])
	})

	start := (page - 1) * pageSize
	if start >= len(messages) {
		return &HistoryResult{Messages: []*domainchat.Message{}}, nil
	}
	end := start + pageSize
	if end > len(messages) {
		end = len(messages)
	}
	slice := messages[start:end]

	out := make([]*domainchat.Message, len(slice))
	for i, m := range slice {
		out[len(slice)-1-i] = m
	}
	return &HistoryResult{Messages: out, HasMore: len(slice) == pageSize}, nil
}

var _ queries.Handler[HistoryQuery, *HistoryResult] = (*HistoryHandler)(nil)
