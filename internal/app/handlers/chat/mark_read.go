package chat

import (
	"context"

	"swapmeet/internal/app/commands"
	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
)

const markReadKey = "chat.mark_read"

type MarkConversationReadCommand struct {
	ConversationKey domainchat.ConversationKey
	ReaderID        string
}

func (c MarkConversationReadCommand) Key() string { return markReadKey }

type MarkConversationReadResult struct {
	Updated int `json:"updated"`
}

type MarkConversationReadHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *MarkConversationReadHandler) Handle(ctx context.Context, cmd MarkConversationReadCommand) (*MarkConversationReadResult, error) {
	unit, execCtx, guard, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer guard.Close(execCtx)

	updated, err := markConversationRead(execCtx, unit, cmd.ConversationKey, cmd.ReaderID)
	if err != nil {
		return nil, err
	}
	if err := guard.Commit(execCtx); err != nil {
		return nil, err
	}
	return &MarkConversationReadResult{Updated: updated}, nil
}

// markConversationRead flips every unread message addressed to the reader
// in the conversation. Calling it with nothing to mark is a no-op.
func markConversationRead(ctx context.Context, unit uow.UnitOfWork, key domainchat.ConversationKey, readerID string) (int, error) {
	messages, err := unit.Messages().ListByConversation(ctx, key)
	if err != nil {
		return 0, err
	}
	var ids []domainchat.MessageID
	for _, m := range messages {
		if m.ReceiverID == readerID && !m.Read {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return unit.Messages().MarkRead(ctx, ids, readerID)
}

var _ commands.Handler[MarkConversationReadCommand, *MarkConversationReadResult] = (*MarkConversationReadHandler)(nil)
