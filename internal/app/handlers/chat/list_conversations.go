package chat

import (
	"context"
	"sort"

	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/queries"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

const listConversationsKey = "chat.list_conversations"

type ListConversationsQuery struct {
	ParticipantID string
}

func (q ListConversationsQuery) Key() string { return listConversationsKey }

// Conversation is a projection computed from the message store on every
// call; nothing about it is persisted.
type Conversation struct {
	Key            domainchat.ConversationKey
	CounterpartyID string
	LastMessage    *domainchat.Message
	UnreadCount    int
	Ad             *domaintrade.AdSnapshot
}

type ListConversationsResult struct {
	Items []Conversation
}

type ListConversationsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListConversationsHandler) Handle(ctx context.Context, query ListConversationsQuery) (*ListConversationsResult, error) {
	unit, execCtx, guard, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer guard.Close(execCtx)

	messages, err := unit.Messages().ListByParticipant(execCtx, query.ParticipantID)
	if err != nil {
		return nil, err
	}

	groups := make(map[domainchat.ConversationKey][]*domainchat.Message)
	for _, m := range messages {
		key := m.Key()
		groups[key] = append(groups[key], m)
	}

	items := make([]Conversation, 0, len(groups))
	for key, group := range groups {
		conv := Conversation{
			Key:            key,
			CounterpartyID: key.Counterparty(query.ParticipantID),
		}
		for _, m := range group {
			if conv.LastMessage == nil || laterMessage(m, conv.LastMessage) {
				conv.LastMessage = m
			}
			if m.ReceiverID == query.ParticipantID && !m.Read {
				conv.UnreadCount++
			}
		}
		if key.HasTrade() {
			// A missing or malformed ad never fails the listing; the
			// snapshot is simply omitted.
			if ad, err := unit.Ads().ByID(execCtx, domaintrade.AdID(key.TradeID)); err == nil {
				snapshot := ad.Snapshot()
				conv.Ad = &snapshot
			}
		}
		items = append(items, conv)
	}

	sort.Slice(items, func(i, j int) bool {
		return laterMessage(items[i].LastMessage, items[j].LastMessage)
	})
	return &ListConversationsResult{Items: items}, nil
}

// laterMessage orders by creation time, tie-broken by id so pagination and
// listings stay deterministic within one timestamp tick.
func laterMessage(a, b *domainchat.Message) bool {
	if a == nil || b == nil {
		return b == nil && a != nil
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

var _ queries.Handler[ListConversationsQuery, *ListConversationsResult] = (*ListConversationsHandler)(nil)
