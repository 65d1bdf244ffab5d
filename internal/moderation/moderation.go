// Package moderation drives the administrator workflow on top of the
// lifecycle, duplicates and listing packages.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cbitosc/HTF25-Team-374/internal/duplicates"
	"github.com/cbitosc/HTF25-Team-374/internal/lifecycle"
	"github.com/cbitosc/HTF25-Team-374/internal/listing"
	"github.com/cbitosc/HTF25-Team-374/internal/lock"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

// ErrNotFound means the item no longer exists in the store.
var ErrNotFound = errors.New("item not found")

// PersistenceError wraps a failed store mutation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting status change: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Repository is the item store as seen by the engine. ListItems returns the
// full collection, newest submissions first. UpdateStatus writes to only
// while the item is still in from, failing with model.ErrStatusChanged
// otherwise and with model.ErrItemNotFound for unknown ids.
type Repository interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.Status) (*model.Item, error)
}

// HistoryRecorder stores applied transitions.
type HistoryRecorder interface {
	RecordStatusChange(ctx context.Context, itemID int64, from, to model.Status, changedBy *int64) error
}

// Service is the moderation orchestrator.
type Service struct {
	repo    Repository
	locker  lock.Locker
	history HistoryRecorder
	log     *slog.Logger
}

// NewService wires a Service. A nil locker means an in-process lock, a nil
// history means transitions are not recorded, and a nil logger means
// slog.Default().
func NewService(repo Repository, locker lock.Locker, history HistoryRecorder, logger *slog.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, locker: locker, history: history, log: logger}
}

// QueueEntry is one row of the moderation queue.
type QueueEntry struct {
	Item       model.Item     `json:"item"`
	Image      string         `json:"image"`
	Duplicates []int64        `json:"duplicates"`
	Actions    []model.Status `json:"actions"`
}

// Queue is the admin dashboard view for one filter.
type Queue struct {
	Filter  listing.Filter         `json:"filter"`
	Counts  map[listing.Filter]int `json:"counts"`
	Entries []QueueEntry           `json:"entries"`
}

// Queue builds the moderation queue for f. Pending entries carry the ids of
// likely duplicates found across the whole collection.
func (s *Service) Queue(ctx context.Context, f listing.Filter) (*Queue, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	view := listing.FilterByStatus(items, f)
	q := &Queue{
		Filter:  f,
		Counts:  listing.Counts(items),
		Entries: make([]QueueEntry, 0, len(view)),
	}
	for _, it := range view {
		entry := QueueEntry{
			Item:       it,
			Image:      it.ImageOrDefault(),
			Duplicates: []int64{},
			Actions:    lifecycle.Allowed(it.Status),
		}
		if it.Status == model.StatusPending {
			entry.Duplicates = duplicates.IDs(duplicates.Find(it, items))
		}
		if entry.Actions == nil {
			entry.Actions = []model.Status{}
		}
		q.Entries = append(q.Entries, entry)
	}
	return q, nil
}

// Duplicates returns the likely duplicates of item id.
func (s *Service) Duplicates(ctx context.Context, id int64) ([]model.Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	item, ok := findItem(items, id)
	if !ok {
		return nil, ErrNotFound
	}
	return duplicates.Find(item, items), nil
}

// Transition moves item id to requested on behalf of actor.
//
// Requests for the same id run one at a time; a later request is validated
// against the state the earlier one left behind. Invalid transitions never
// reach the store. Store failures are not retried.
func (s *Service) Transition(ctx context.Context, id int64, requested model.Status, actor *int64) (*model.Item, error) {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("waiting for item %d: %w", id, err)
	}
	defer unlock()

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	current, ok := findItem(items, id)
	if !ok {
		return nil, ErrNotFound
	}

	if _, err := lifecycle.Apply(current, requested); err != nil {
		s.log.Warn("transition rejected", "item", id, "from", current.Status, "to", requested)
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, requested)
	if errors.Is(err, model.ErrItemNotFound) {
		return nil, ErrNotFound
	}
	if errors.Is(err, model.ErrStatusChanged) {
		s.log.Warn("transition lost a race", "item", id, "from", current.Status, "to", requested)
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	if err != nil {
		s.log.Error("failed to persist transition", "item", id, "to", requested, "error", err)
		return nil, &PersistenceError{Err: err}
	}

	if s.history != nil {
		if err := s.history.RecordStatusChange(ctx, id, current.Status, requested, actor); err != nil {
			s.log.Error("failed to record status change", "item", id, "error", err)
		}
	}

	s.log.Info("item status changed", "item", id, "from", current.Status, "to", requested)
	return updated, nil
}

// Home is the homepage preview.
type Home struct {
	RecentLost  []model.Item `json:"recent_lost"`
	RecentFound []model.Item `json:"recent_found"`
}

// Home returns the most recent lost and found listings.
func (s *Service) Home(ctx context.Context) (*Home, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return &Home{
		RecentLost:  nonNil(listing.RecentByStatus(items, model.StatusLost, listing.RecentLimit)),
		RecentFound: nonNil(listing.RecentByStatus(items, model.StatusFound, listing.RecentLimit)),
	}, nil
}

// Browse returns the items with status st, narrowed to titles containing
// term. A blank term skips the search.
func (s *Service) Browse(ctx context.Context, st model.Status, term string) ([]model.Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	view := listing.FilterByStatus(items, listing.Filter(st))
	if term = strings.TrimSpace(term); term != "" {
		view = listing.SearchByTitle(view, term)
	}
	return nonNil(view), nil
}

func findItem(items []model.Item, id int64) (model.Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

func nonNil(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}
