package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	tradeapp "swapmeet/internal/app/handlers/trade"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
	mongostore "swapmeet/internal/infra/db/mongo"
	memstore "swapmeet/internal/infra/storage/memory"
)

// respondError maps domain sentinels onto HTTP statuses. Anything
// unrecognized is a plain 400 so storage errors never leak internals with
// a 500 by accident.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainchat.ErrMessageNotFound),
		errors.Is(err, domaintrade.ErrAdNotFound),
		errors.Is(err, domaintrade.ErrOfferNotFound):
		return http.StatusNotFound
	case errors.Is(err, domaintrade.ErrNotAdOwner),
		errors.Is(err, domaintrade.ErrOwnAd),
		errors.Is(err, tradeapp.ErrNotTradeParty):
		return http.StatusForbidden
	case errors.Is(err, domaintrade.ErrOfferResolved),
		errors.Is(err, domaintrade.ErrAdNotActive),
		errors.Is(err, domaintrade.ErrBadAdTransition),
		errors.Is(err, mongostore.ErrConcurrentUpdate),
		errors.Is(err, memstore.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, domainchat.ErrSelfConversation),
		errors.Is(err, domainchat.ErrBadConversationKey),
		errors.Is(err, domainchat.ErrEmptyBody):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
