package dto

import "time"

// Conversation describes one thread in the conversation list.
type Conversation struct {
	Key            string       `json:"key"`
	CounterpartyID string       `json:"counterparty_id"`
	TradeID        string       `json:"trade_id,omitempty"`
	LastMessage    *ChatMessage `json:"last_message,omitempty"`
	UnreadCount    int          `json:"unread_count"`
	Ad             *AdSnapshot  `json:"ad,omitempty"`
}

// ConversationList is the conversation collection payload.
type ConversationList struct {
	Items []Conversation `json:"items"`
	Count int            `json:"count"`
}

// ChatMessage contains a single message payload. Content carries the
// legacy delimited rendering for trade-offer messages.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	TradeID    string    `json:"trade_id,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatMessageList is one page of history, oldest-to-newest.
type ChatMessageList struct {
	Items   []ChatMessage `json:"items"`
	Page    int           `json:"page"`
	HasMore bool          `json:"has_more"`
}
