package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	domainchat "swapmeet/internal/domain/chat"
	domaintrade "swapmeet/internal/domain/trade"
)

// ErrConcurrentUpdate mirrors the database-backed repositories: a save with
// a stale Version loses the race.
var ErrConcurrentUpdate = errors.New("memory: concurrent update detected")

// MessageRepository is an in-memory append-only message store.
type MessageRepository struct {
	mu    sync.RWMutex
	items map[domainchat.MessageID]*domainchat.Message
	order []domainchat.MessageID
}

// NewMessageRepository builds an empty repository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{items: make(map[domainchat.MessageID]*domainchat.Message)}
}

// Append stores a new message. Re-appending an existing id is rejected to
// keep the log append-only.
func (r *MessageRepository) Append(ctx context.Context, m *domainchat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.ID]; ok {
		return errors.New("memory: message already appended")
	}
	clone := *m
	clone.ClearEvents()
	r.items[m.ID] = &clone
	r.order = append(r.order, m.ID)
	return nil
}

// ByID returns a message copy or chat.ErrMessageNotFound.
func (r *MessageRepository) ByID(ctx context.Context, id domainchat.MessageID) (*domainchat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[id]
	if !ok {
		return nil, domainchat.ErrMessageNotFound
	}
	clone := *m
	return &clone, nil
}

// ListByParticipant returns every message sent or received by the user, in
// append order.
func (r *MessageRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domainchat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainchat.Message, 0)
	for _, id := range r.order {
		m := r.items[id]
		if m.SenderID != participantID && m.ReceiverID != participantID {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

// ListByConversation returns the conversation's messages in append order.
func (r *MessageRepository) ListByConversation(ctx context.Context, key domainchat.ConversationKey) ([]*domainchat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainchat.Message, 0)
	for _, id := range r.order {
		m := r.items[id]
		if m.Key() != key {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

// LatestTradeOffer finds the newest trade-offer message carrying offerID.
func (r *MessageRepository) LatestTradeOffer(ctx context.Context, offerID string) (*domainchat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *domainchat.Message
	for _, id := range r.order {
		m := r.items[id]
		if m.Kind != domainchat.KindTradeOffer || m.Offer.OfferID != offerID {
			continue
		}
		if found == nil || m.CreatedAt.After(found.CreatedAt) {
			found = m
		}
	}
	if found == nil {
		return nil, domainchat.ErrMessageNotFound
	}
	clone := *found
	return &clone, nil
}

// AmendOutcome tags the latest trade-offer message for offerID. Nothing to
// tag is success.
func (r *MessageRepository) AmendOutcome(ctx context.Context, offerID string, outcome domainchat.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *domainchat.Message
	for _, id := range r.order {
		m := r.items[id]
		if m.Kind != domainchat.KindTradeOffer || m.Offer.OfferID != offerID {
			continue
		}
		if found == nil || m.CreatedAt.After(found.CreatedAt) {
			found = m
		}
	}
	if found == nil {
		return nil
	}
	found.TagOutcome(outcome)
	return nil
}

// MarkRead flips the read flag on the addressed messages and reports how
// many actually changed.
func (r *MessageRepository) MarkRead(ctx context.Context, ids []domainchat.MessageID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, id := range ids {
		m, ok := r.items[id]
		if !ok {
			continue
		}
		if m.MarkRead(readerID) {
			updated++
		}
	}
	return updated, nil
}

// OfferRepository is an in-memory offer store with optimistic locking.
type OfferRepository struct {
	mu    sync.RWMutex
	items map[domaintrade.OfferID]*domaintrade.Offer
}

// NewOfferRepository builds an empty repository.
func NewOfferRepository() *OfferRepository {
	return &OfferRepository{items: make(map[domaintrade.OfferID]*domaintrade.Offer)}
}

// ByID returns an offer copy or trade.ErrOfferNotFound.
func (r *OfferRepository) ByID(ctx context.Context, id domaintrade.OfferID) (*domaintrade.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return nil, domaintrade.ErrOfferNotFound
	}
	clone := *o
	return &clone, nil
}

// Save stores the offer, compare-and-swapping on Version.
func (r *OfferRepository) Save(ctx context.Context, offer *domaintrade.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[offer.ID]; ok && current.Version != offer.Version {
		return ErrConcurrentUpdate
	}
	clone := *offer
	clone.Version = offer.Version + 1
	clone.ClearEvents()
	r.items[offer.ID] = &clone
	offer.Version = clone.Version
	return nil
}

// ListPendingByAd returns the pending offers against one ad, oldest first.
func (r *OfferRepository) ListPendingByAd(ctx context.Context, adID domaintrade.AdID) ([]*domaintrade.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaintrade.Offer, 0)
	for _, o := range r.items {
		if o.AdID != adID || o.Status != domaintrade.OfferPending {
			continue
		}
		clone := *o
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// AcceptedByAd returns the accepted offer for an ad, if any.
func (r *OfferRepository) AcceptedByAd(ctx context.Context, adID domaintrade.AdID) (*domaintrade.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.items {
		if o.AdID == adID && o.Status == domaintrade.OfferAccepted {
			clone := *o
			return &clone, nil
		}
	}
	return nil, domaintrade.ErrOfferNotFound
}

// AdRepository is an in-memory ad store with optimistic locking.
type AdRepository struct {
	mu    sync.RWMutex
	items map[domaintrade.AdID]*domaintrade.Ad
}

// NewAdRepository builds an empty repository.
func NewAdRepository() *AdRepository {
	return &AdRepository{items: make(map[domaintrade.AdID]*domaintrade.Ad)}
}

// ByID returns an ad copy or trade.ErrAdNotFound.
func (r *AdRepository) ByID(ctx context.Context, id domaintrade.AdID) (*domaintrade.Ad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return nil, domaintrade.ErrAdNotFound
	}
	clone := *a
	return &clone, nil
}

// Save stores the ad, compare-and-swapping on Version.
func (r *AdRepository) Save(ctx context.Context, ad *domaintrade.Ad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[ad.ID]; ok && current.Version != ad.Version {
		return ErrConcurrentUpdate
	}
	clone := *ad
	clone.Version = ad.Version + 1
	clone.ClearEvents()
	r.items[ad.ID] = &clone
	ad.Version = clone.Version
	return nil
}
