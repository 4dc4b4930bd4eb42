package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"swapmeet/internal/app/commands"
	tradeapp "swapmeet/internal/app/handlers/trade"
)

type TradeHandler struct {
	Commands commands.Bus
}

type proposeTradeRequest struct {
	ImageURL string `json:"image_url"`
}

func (h TradeHandler) Propose(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req proposeTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := tradeapp.ProposeTradeCommand{
		CommandID:       generateCommandID(),
		AdID:            c.Param("id"),
		ProposerID:      user.ID,
		ImageURL:        req.ImageURL,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[tradeapp.ProposeTradeCommand, *tradeapp.ProposeTradeResult](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h TradeHandler) Accept(c *gin.Context) {
	h.resolve(c, true)
}

func (h TradeHandler) Reject(c *gin.Context) {
	h.resolve(c, false)
}

func (h TradeHandler) resolve(c *gin.Context, approve bool) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := tradeapp.ResolveOfferCommand{
		OfferID:         c.Param("id"),
		ReviewerID:      user.ID,
		Approve:         approve,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[tradeapp.ResolveOfferCommand, *tradeapp.ResolveOfferResult](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h TradeHandler) Finish(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := tradeapp.FinishTradeCommand{AdID: c.Param("id"), ActorID: user.ID}
	result, err := commands.Dispatch[tradeapp.FinishTradeCommand, *tradeapp.FinishTradeResult](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type complaintRequest struct {
	Reason string `json:"reason"`
}

func (h TradeHandler) Complaint(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := tradeapp.FileComplaintCommand{
		AdID:          c.Param("id"),
		ComplainantID: user.ID,
		Reason:        req.Reason,
	}
	result, err := commands.Dispatch[tradeapp.FileComplaintCommand, *tradeapp.FileComplaintResult](
		c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ TradeHTTP = TradeHandler{}
