package chat

import "time"

type MessageSent struct {
	MessageID  MessageID
	Key        string
	SenderID   string
	ReceiverID string
	Kind       MessageKind
	At         time.Time
}

func (e MessageSent) EventName() string     { return "chat.message_sent" }
func (e MessageSent) AggregateID() string   { return string(e.MessageID) }
func (e MessageSent) OccurredAt() time.Time { return e.At }
