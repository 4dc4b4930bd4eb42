package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"swapmeet/internal/domain/shared/events"
)

var (
	ErrInvalidStatus   = errors.New("trade: invalid ad status")
	ErrBadAdTransition = errors.New("trade: invalid ad status transition")
	ErrAdNotFound      = errors.New("trade: ad not found")
)

type AdID string

type AdStatus string

const (
	AdActive    AdStatus = "ACTIVE"
	AdPending   AdStatus = "PENDING"
	AdCompleted AdStatus = "COMPLETED"
	AdCancelled AdStatus = "CANCELLED"
)

// ParseAdStatus accepts exactly the four lifecycle values.
func ParseAdStatus(raw string) (AdStatus, error) {
	switch AdStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case AdActive:
		return AdActive, nil
	case AdPending:
		return AdPending, nil
	case AdCompleted:
		return AdCompleted, nil
	case AdCancelled:
		return AdCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Ad is the trade advertisement as this core sees it. Only Status is owned
// here; title, photo and owner are read-only snapshots of the ad-management
// subsystem's record.
type Ad struct {
	ID        AdID
	OwnerID   string
	Title     string
	PhotoURL  string
	Status    AdStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// Hold moves the ad out of the open-for-offers pool after an offer was
// accepted.
func (a *Ad) Hold(now time.Time) error {
	if a.Status != AdActive {
		return ErrBadAdTransition
	}
	a.Status = AdPending
	a.UpdatedAt = now.UTC()
	return nil
}

// Reopen reverts the ad to ACTIVE after an offer was rejected.
func (a *Ad) Reopen(now time.Time) error {
	if a.Status != AdActive && a.Status != AdPending {
		return ErrBadAdTransition
	}
	a.Status = AdActive
	a.UpdatedAt = now.UTC()
	return nil
}

// Finish closes a trade that both sides completed. Terminal.
func (a *Ad) Finish(now time.Time) error {
	if a.Status != AdPending {
		return ErrBadAdTransition
	}
	a.Status = AdCompleted
	a.UpdatedAt = now.UTC()
	a.Record(AdCompletedEvent{AdID: a.ID, At: a.UpdatedAt})
	return nil
}

// Cancel abandons the ad after a complaint. Terminal; pending offers on the
// ad are rejected by the caller.
func (a *Ad) Cancel(reason string, now time.Time) error {
	if a.Status == AdCompleted || a.Status == AdCancelled {
		return ErrBadAdTransition
	}
	a.Status = AdCancelled
	a.UpdatedAt = now.UTC()
	a.Record(AdCancelledEvent{AdID: a.ID, Reason: reason, At: a.UpdatedAt})
	return nil
}

// AdSnapshot is the read-only projection embedded in conversation listings.
type AdSnapshot struct {
	ID       AdID
	Title    string
	PhotoURL string
	Status   AdStatus
}

func (a *Ad) Snapshot() AdSnapshot {
	return AdSnapshot{ID: a.ID, Title: a.Title, PhotoURL: a.PhotoURL, Status: a.Status}
}

type AdRepository interface {
	ByID(ctx context.Context, id AdID) (*Ad, error)
	Save(ctx context.Context, ad *Ad) error
}
