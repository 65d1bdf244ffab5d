package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

func newItem(title string) NewItem {
	return NewItem{
		Title:       title,
		Description: "left near the library",
		Location:    "Library, 2nd floor",
		OccurredAt:  time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC),
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, newItem("Blue Wallet"))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Title != "Blue Wallet" {
		t.Errorf("expected title 'Blue Wallet', got %q", item.Title)
	}
	if item.Status != model.StatusPending {
		t.Errorf("expected status 'pending', got %q", item.Status)
	}
	if !item.OccurredAt.Equal(time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected occurred_at %v", item.OccurredAt)
	}
	if item.SubmittedBy != nil {
		t.Errorf("expected no submitter, got %v", *item.SubmittedBy)
	}

	missing, err := GetItem(ctx, database, item.ID+100)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestCreateItemWithSubmitter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "Sam", "sam@campus.edu", "hash", model.RoleUser)
	in := newItem("Umbrella")
	in.SubmittedBy = &user.ID

	item, err := CreateItem(ctx, database, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.SubmittedBy == nil || *item.SubmittedBy != user.ID {
		t.Errorf("expected submitter %d, got %v", user.ID, item.SubmittedBy)
	}
}

func TestListItemsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreateItem(ctx, database, newItem("First"))
	second, _ := CreateItem(ctx, database, newItem("Second"))
	third, _ := CreateItem(ctx, database, newItem("Third"))

	items, err := ListItems(ctx, database)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != third.ID || items[1].ID != second.ID || items[2].ID != first.ID {
		t.Errorf("expected newest first, got %d, %d, %d", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestUpdateItemStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem("Calculator"))

	updated, err := UpdateItemStatus(ctx, database, item.ID, model.StatusLost)
	if err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}
	if updated.Status != model.StatusLost {
		t.Errorf("expected lost, got %q", updated.Status)
	}

	if _, err := UpdateItemStatus(ctx, database, item.ID+100, model.StatusLost); !errors.Is(err, model.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	// The schema refuses statuses outside the state machine's vocabulary.
	if _, err := UpdateItemStatus(ctx, database, item.ID, "archived"); err == nil {
		t.Error("expected check constraint failure for unknown status")
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem("Photo Item"))
	imageData := []byte("fake image data")
	if err := SetItemImage(ctx, database, item.ID, imageData, "image/jpeg", "/api/items/1/image"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Image != "/api/items/1/image" {
		t.Errorf("expected image url to be set, got %q", got.Image)
	}

	if err := SetItemImage(ctx, database, 999, imageData, "image/jpeg", ""); !errors.Is(err, model.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, _ := CreateUser(ctx, database, "Admin", "admin@campus.edu", "hash", model.RoleAdmin)
	item, _ := CreateItem(ctx, database, newItem("Keys"))

	if err := RecordStatusChange(ctx, database, item.ID, model.StatusPending, model.StatusFound, &admin.ID); err != nil {
		t.Fatalf("RecordStatusChange: %v", err)
	}
	if err := RecordStatusChange(ctx, database, item.ID, model.StatusFound, model.StatusResolved, nil); err != nil {
		t.Fatalf("RecordStatusChange: %v", err)
	}

	history, err := GetItemHistory(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(history))
	}
	if history[0].To != model.StatusResolved || history[0].ChangedBy != nil {
		t.Errorf("unexpected newest change %+v", history[0])
	}
	if history[1].From != model.StatusPending || history[1].ChangedByName != "Admin" {
		t.Errorf("unexpected oldest change %+v", history[1])
	}
}

func TestItemsRepository(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	repo := &Items{DB: database}

	item, _ := CreateItem(ctx, database, newItem("Scarf"))

	updated, err := repo.UpdateStatus(ctx, item.ID, model.StatusPending, model.StatusFound)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != model.StatusFound {
		t.Errorf("expected found, got %q", updated.Status)
	}

	items, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].Status != model.StatusFound {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestTransitionItemStatusGuard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newItem("Umbrella"))

	if _, err := TransitionItemStatus(ctx, database, item.ID, model.StatusPending, model.StatusLost); err != nil {
		t.Fatalf("TransitionItemStatus: %v", err)
	}

	// A second writer that still believes the item is pending loses.
	_, err := TransitionItemStatus(ctx, database, item.ID, model.StatusPending, model.StatusFound)
	if !errors.Is(err, model.ErrStatusChanged) {
		t.Fatalf("expected ErrStatusChanged, got %v", err)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.StatusLost {
		t.Errorf("expected lost to survive, got %q", got.Status)
	}

	if _, err := TransitionItemStatus(ctx, database, item.ID+100, model.StatusPending, model.StatusLost); !errors.Is(err, model.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}
