package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/hireauth"
)

func TestCreateAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Create(ctx, hireauth.CreateIdentityInput{FullName: "Ada", Email: "ada@example.com", Role: hireauth.RoleApplicant, PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.UserID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", created)
	}

	got, err := s.GetByEmail(ctx, "ada@example.com")
	if err != nil || got.UserID != created.UserID {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}
	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, hireauth.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestDuplicateEmailUnderConcurrency(t *testing.T) {
	s := New()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		dupes   int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), hireauth.CreateIdentityInput{Email: "same@example.com", Role: hireauth.RoleApplicant})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, hireauth.ErrAccountExists):
				dupes++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	if success != 1 || dupes != 19 {
		t.Fatalf("success=%d dupes=%d", success, dupes)
	}
}

func TestUpdateRoleAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, _ := s.Create(ctx, hireauth.CreateIdentityInput{Email: "x@example.com", Role: hireauth.RoleApplicant})

	updated, err := s.UpdateRole(ctx, created.UserID, hireauth.RoleAdmin)
	if err != nil || updated.Role != hireauth.RoleAdmin {
		t.Fatalf("UpdateRole = %+v, %v", updated, err)
	}
	if _, err := s.UpdateRole(ctx, created.UserID, "root"); err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
	if err := s.Delete(ctx, created.UserID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByEmail(ctx, "x@example.com"); !errors.Is(err, hireauth.ErrIdentityNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}
