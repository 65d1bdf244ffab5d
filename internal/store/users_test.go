package store

import (
	"context"
	"testing"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Test User", "Test@Campus.edu", "hash123", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "test@campus.edu" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", user.Role)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Test User" {
		t.Errorf("expected name 'Test User', got %q", got.Name)
	}
}

func TestGetUserByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "Alice", "alice@campus.edu", "hash", model.RoleAdmin)

	user, err := GetUserByEmail(ctx, database, "  ALICE@campus.edu ")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Name != "Alice" {
		t.Errorf("expected 'Alice', got %q", user.Name)
	}

	missing, err := GetUserByEmail(ctx, database, "bob@campus.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "A", "dup@campus.edu", "hash", model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, database, "B", "DUP@campus.edu", "hash", model.RoleUser); err == nil {
		t.Error("expected unique violation for duplicate email")
	}
}

func TestListAndDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := CreateUser(ctx, database, "A", "a@campus.edu", "hash", model.RoleUser)
	CreateUser(ctx, database, "B", "b@campus.edu", "hash", model.RoleAdmin)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	DeleteUser(ctx, database, a.ID)

	users, _ = ListUsers(ctx, database)
	if len(users) != 1 {
		t.Errorf("expected 1 user after delete, got %d", len(users))
	}
	if u, _ := GetUserByEmail(ctx, database, "a@campus.edu"); u != nil {
		t.Error("deleted user should not be found by email")
	}

	// The email can be reused once the old account is gone.
	if _, err := CreateUser(ctx, database, "A2", "a@campus.edu", "hash", model.RoleUser); err != nil {
		t.Errorf("expected email reuse after delete, got %v", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pw", "pw@campus.edu", "oldhash", model.RoleUser)
	UpdateUserPassword(ctx, database, user.ID, "newhash")

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}
