package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

const itemColumns = `id, title, description, location, occurred_at, image_url, status,
	submitted_by, created_at, updated_at`

// NewItem holds the user-supplied fields of a submission.
type NewItem struct {
	Title       string
	Description string
	Location    string
	OccurredAt  time.Time
	Image       string
	SubmittedBy *int64
}

// CreateItem stores a new submission. Items always start pending.
func CreateItem(ctx context.Context, d *db.DB, in NewItem) (*model.Item, error) {
	var id int64
	err := d.QueryRowContext(ctx,
		`INSERT INTO items (title, description, location, occurred_at, image_url, status, submitted_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		in.Title, in.Description, in.Location, in.OccurredAt.UTC(), in.Image, string(model.StatusPending), in.SubmittedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, d, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, d *db.DB, id int64) (*model.Item, error) {
	row := d.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns every item, newest submission first.
func ListItems(ctx context.Context, d *db.DB) ([]model.Item, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItemStatus sets an item's status. It does not check the transition;
// callers go through the moderation service for that.
func UpdateItemStatus(ctx context.Context, d *db.DB, id int64, status model.Status) (*model.Item, error) {
	result, err := d.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	if n == 0 {
		return nil, model.ErrItemNotFound
	}
	return GetItem(ctx, d, id)
}

// TransitionItemStatus moves an item from one status to another. The write
// only applies while the item is still in from, so two writers that both
// read the old status cannot both succeed.
func TransitionItemStatus(ctx context.Context, d *db.DB, id int64, from, to model.Status) (*model.Item, error) {
	result, err := d.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	if n == 1 {
		return GetItem(ctx, d, id)
	}

	item, err := GetItem(ctx, d, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.ErrItemNotFound
	}
	return nil, model.ErrStatusChanged
}

// SetItemImage stores an uploaded photo and points the item's image URL at it.
func SetItemImage(ctx context.Context, d *db.DB, id int64, image []byte, mime, url string) error {
	result, err := d.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		image, mime, url, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, d *db.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := d.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var status string
	var submittedBy sql.NullInt64
	if err := s.Scan(&item.ID, &item.Title, &item.Description, &item.Location, &item.OccurredAt,
		&item.Image, &status, &submittedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Status = model.Status(status)
	if submittedBy.Valid {
		item.SubmittedBy = &submittedBy.Int64
	}
	return item, nil
}
