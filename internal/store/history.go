package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

// RecordStatusChange appends a transition to an item's history.
func RecordStatusChange(ctx context.Context, d *db.DB, itemID int64, from, to model.Status, changedBy *int64) error {
	_, err := d.ExecContext(ctx,
		`INSERT INTO status_changes (item_id, from_status, to_status, changed_by) VALUES (?, ?, ?, ?)`,
		itemID, string(from), string(to), changedBy,
	)
	if err != nil {
		return fmt.Errorf("recording status change: %w", err)
	}
	return nil
}

// GetItemHistory returns the status changes of an item, newest first.
func GetItemHistory(ctx context.Context, d *db.DB, itemID int64) ([]model.StatusChange, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.from_status, c.to_status, c.changed_by, c.changed_at,
		        COALESCE(u.name, '') AS changed_by_name
		 FROM status_changes c
		 LEFT JOIN users u ON u.id = c.changed_by
		 WHERE c.item_id = ?
		 ORDER BY c.changed_at DESC, c.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item history: %w", err)
	}
	defer rows.Close()

	var changes []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		var from, to string
		var changedBy sql.NullInt64
		if err := rows.Scan(&c.ID, &c.ItemID, &from, &to, &changedBy, &c.ChangedAt, &c.ChangedByName); err != nil {
			return nil, fmt.Errorf("scanning status change: %w", err)
		}
		c.From = model.Status(from)
		c.To = model.Status(to)
		if changedBy.Valid {
			c.ChangedBy = &changedBy.Int64
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
