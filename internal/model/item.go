package model

import (
	"errors"
	"time"
)

// Status is the moderation state of an item.
type Status string

// Item statuses.
const (
	StatusPending  Status = "pending"
	StatusLost     Status = "lost"
	StatusFound    Status = "found"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusLost, StatusFound, StatusResolved, StatusRejected}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusLost, StatusFound, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// DefaultImage is shown for items submitted without a photo.
const DefaultImage = "https://picsum.photos/seed/default/200"

// ErrItemNotFound is returned by stores when an item id does not exist.
var ErrItemNotFound = errors.New("item not found")

// ErrStatusChanged is returned by stores when a guarded status update finds
// the item no longer in the expected status.
var ErrStatusChanged = errors.New("item status changed concurrently")

// Item is a single lost or found submission.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	OccurredAt  time.Time `json:"datetime"`
	Image       string    `json:"image,omitempty"`
	Status      Status    `json:"status"`
	SubmittedBy *int64    `json:"submitted_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageOrDefault returns the item's image URL, or DefaultImage if it has none.
func (i Item) ImageOrDefault() string {
	if i.Image == "" {
		return DefaultImage
	}
	return i.Image
}

// StatusChange records one applied status transition.
type StatusChange struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedBy *int64    `json:"changed_by,omitempty"`
	ChangedAt time.Time `json:"changed_at"`

	// Joined field (not always populated).
	ChangedByName string `json:"changed_by_name,omitempty"`
}
