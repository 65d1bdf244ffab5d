package store

import (
	"context"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

// Items adapts the item functions of this package to moderation.Repository
// and moderation.HistoryRecorder.
type Items struct {
	DB *db.DB
}

// ListItems returns every item, newest submission first.
func (s *Items) ListItems(ctx context.Context) ([]model.Item, error) {
	return ListItems(ctx, s.DB)
}

// UpdateStatus persists a new status if the item is still in from.
func (s *Items) UpdateStatus(ctx context.Context, id int64, from, to model.Status) (*model.Item, error) {
	return TransitionItemStatus(ctx, s.DB, id, from, to)
}

// RecordStatusChange appends to the item's history.
func (s *Items) RecordStatusChange(ctx context.Context, itemID int64, from, to model.Status, changedBy *int64) error {
	return RecordStatusChange(ctx, s.DB, itemID, from, to, changedBy)
}
