package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/hireauth"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Second run must be a no-op.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate again: %v", err)
	}
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	created, err := store.Create(ctx, hireauth.CreateIdentityInput{
		FullName:     "Grace Hopper",
		Email:        "grace@example.com",
		Role:         hireauth.RoleApplicant,
		PasswordHash: "$2a$10$abc",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byEmail, err := store.GetByEmail(ctx, "grace@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.UserID != created.UserID || byEmail.FullName != "Grace Hopper" {
		t.Fatalf("unexpected identity %+v", byEmail)
	}
	if !byEmail.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", byEmail.CreatedAt, created.CreatedAt)
	}

	updated, err := store.UpdateRole(ctx, created.UserID, hireauth.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if updated.Role != hireauth.RoleAdmin {
		t.Fatalf("expected admin, got %s", updated.Role)
	}

	if err := store.UpdatePasswordHash(ctx, created.UserID, "$argon2id$new"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	byID, err := store.GetByID(ctx, created.UserID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.PasswordHash != "$argon2id$new" {
		t.Fatalf("hash not updated: %q", byID.PasswordHash)
	}
}

func TestSQLiteDuplicateEmail(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	in := hireauth.CreateIdentityInput{FullName: "A", Email: "dup@example.com", Role: hireauth.RoleApplicant, PasswordHash: "h"}

	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := store.Create(ctx, in); !errors.Is(err, hireauth.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestSQLiteMissingUser(t *testing.T) {
	store := openSQLite(t)
	if _, err := store.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, hireauth.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
	if err := store.UpdatePasswordHash(context.Background(), "nobody", "h"); !errors.Is(err, hireauth.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}
