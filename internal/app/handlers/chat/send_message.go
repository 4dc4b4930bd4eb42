package chat

import (
	"context"
	"errors"
	"time"

	"swapmeet/internal/app/commands"
	"swapmeet/internal/app/handlers/support"
	"swapmeet/internal/app/middleware"
	"swapmeet/internal/app/outbox"
	"swapmeet/internal/app/uow"
	domainchat "swapmeet/internal/domain/chat"
)

const sendMessageKey = "chat.send_message"

type SendMessageCommand struct {
	CommandID       string
	SenderID        string
	ReceiverID      string
	Body            string
	TradeID         string
	IdempotencyKeyV string
}

func (c SendMessageCommand) Key() string { return sendMessageKey }

func (c SendMessageCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SendMessageCommand) ResultPrototype() any { return &SendMessageResult{} }

func (c SendMessageCommand) Validate() error {
	if c.CommandID == "" || c.SenderID == "" || c.ReceiverID == "" {
		return errors.New("chat: send_message requires command id, sender and receiver")
	}
	return nil
}

type SendMessageResult struct {
	MessageID string `json:"message_id"`
}

type SendMessageHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (*SendMessageResult, error) {
	unit, execCtx, guard, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer guard.Close(execCtx)

	now := time.Now().UTC()
	message, err := domainchat.NewMessage(domainchat.NewMessageParams{
		ID:         domainchat.MessageID(cmd.CommandID),
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Body:       cmd.Body,
		TradeID:    cmd.TradeID,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Messages().Append(execCtx, message); err != nil {
		return nil, err
	}

	// Sending implies the sender has seen the thread; clear their unread
	// counter inside the same unit of work.
	if _, err := markConversationRead(execCtx, unit, message.Key(), cmd.SenderID); err != nil {
		return nil, err
	}

	pending := message.PendingEvents()
	message.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if err := guard.Commit(execCtx); err != nil {
		return nil, err
	}
	return &SendMessageResult{MessageID: string(message.ID)}, nil
}

func (h *SendMessageHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SendMessageCommand, *SendMessageResult] = (*SendMessageHandler)(nil)
var _ middleware.IdempotentCommand = (*SendMessageCommand)(nil)
