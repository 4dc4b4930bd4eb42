package ginserver

import (
	"errors"
	"net/http"
	"testing"

	tradeapp "swapmeet/internal/app/handlers/trade"
	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
	memstore "swapmeet/internal/infra/storage/memory"
)

func TestStatusForDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainchat.ErrMessageNotFound, http.StatusNotFound},
		{domaintrade.ErrAdNotFound, http.StatusNotFound},
		{domaintrade.ErrOfferNotFound, http.StatusNotFound},
		{domaintrade.ErrNotAdOwner, http.StatusForbidden},
		{domaintrade.ErrOwnAd, http.StatusForbidden},
		{tradeapp.ErrNotTradeParty, http.StatusForbidden},
		{domaintrade.ErrOfferResolved, http.StatusConflict},
		{domaintrade.ErrAdNotActive, http.StatusConflict},
		{memstore.ErrConcurrentUpdate, http.StatusConflict},
		{domainchat.ErrSelfConversation, http.StatusUnprocessableEntity},
		{domainchat.ErrEmptyBody, http.StatusUnprocessableEntity},
		{errors.New("anything else"), http.StatusBadRequest},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Fatalf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestStatusForWrappedError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), domaintrade.ErrOfferResolved)
	if got := statusFor(wrapped); got != http.StatusConflict {
		t.Fatalf("statusFor(wrapped) = %d, want 409", got)
	}
}
