package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"swapmeet/internal/app/commands"
	"swapmeet/internal/app/dto"
	chatapp "swapmeet/internal/app/handlers/chat"
	"swapmeet/internal/app/queries"
	domainchat "swapmeet/internal/domain/chat"
)

type ChatHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h ChatHandler) List(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[chatapp.ListConversationsQuery, *chatapp.ListConversationsResult](
		c.Request.Context(), h.Queries, chatapp.ListConversationsQuery{ParticipantID: user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]dto.Conversation, 0, len(result.Items))
	for _, conv := range result.Items {
		item := dto.Conversation{
			Key:            conv.Key.String(),
			CounterpartyID: conv.CounterpartyID,
			TradeID:        conv.Key.TradeID,
			UnreadCount:    conv.UnreadCount,
		}
		if conv.LastMessage != nil {
			msg := toMessageDTO(conv.LastMessage)
			item.LastMessage = &msg
		}
		if conv.Ad != nil {
			item.Ad = &dto.AdSnapshot{
				ID:       string(conv.Ad.ID),
				Title:    conv.Ad.Title,
				PhotoURL: conv.Ad.PhotoURL,
				Status:   string(conv.Ad.Status),
			}
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, dto.ConversationList{Items: items, Count: len(items)})
}

func (h ChatHandler) History(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	key, ok := conversationKeyParam(c, user)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	result, err := queries.Ask[chatapp.HistoryQuery, *chatapp.HistoryResult](
		c.Request.Context(), h.Queries, chatapp.HistoryQuery{
			ConversationKey: key,
			Page:            page,
			PageSize:        pageSize,
		})
	if err != nil {
		respondError(c, err)
		return
	}

	// Opening the latest page counts as reading the thread.
	if page <= 1 {
		cmd := chatapp.MarkConversationReadCommand{ConversationKey: key, ReaderID: user.ID}
		_, _ = commands.Dispatch[chatapp.MarkConversationReadCommand, *chatapp.MarkConversationReadResult](
			c.Request.Context(), h.Commands, cmd)
	}

	items := make([]dto.ChatMessage, 0, len(result.Messages))
	for _, m := range result.Messages {
		items = append(items, toMessageDTO(m))
	}
	c.JSON(http.StatusOK, dto.ChatMessageList{Items: items, Page: max(page, 1), HasMore: result.HasMore})
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h ChatHandler) Send(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	key, ok := conversationKeyParam(c, user)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := chatapp.SendMessageCommand{
		CommandID:       generateCommandID(),
		SenderID:        user.ID,
		ReceiverID:      key.Counterparty(user.ID),
		Body:            req.Body,
		TradeID:         key.TradeID,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[chatapp.SendMessageCommand, *chatapp.SendMessageResult](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ChatHandler) MarkRead(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	key, ok := conversationKeyParam(c, user)
	if !ok {
		return
	}
	cmd := chatapp.MarkConversationReadCommand{ConversationKey: key, ReaderID: user.ID}
	result, err := commands.Dispatch[chatapp.MarkConversationReadCommand, *chatapp.MarkConversationReadResult](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// conversationKeyParam parses the :key path segment and checks that the
// caller is one of the two participants.
func conversationKeyParam(c *gin.Context, user principal) (domainchat.ConversationKey, bool) {
	key, err := domainchat.ParseKey(c.Param("key"))
	if err != nil {
		respondError(c, err)
		return domainchat.ConversationKey{}, false
	}
	if !key.Involves(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return domainchat.ConversationKey{}, false
	}
	return key, true
}

func toMessageDTO(m *domainchat.Message) dto.ChatMessage {
	return dto.ChatMessage{
		ID:         string(m.ID),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Kind:       string(m.Kind),
		Content:    m.Body,
		TradeID:    m.TradeID,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}

var _ ChatHTTP = ChatHandler{}
