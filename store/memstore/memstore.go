// Package memstore is an in-memory hireauth.CredentialStore for development
// servers and tests. Data does not survive a restart.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/internal"
)

var (
	_ hireauth.CredentialStore     = (*Store)(nil)
	_ hireauth.PasswordHashUpdater = (*Store)(nil)
)

// Store holds identities keyed by id with a secondary email index.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]hireauth.Identity
	byEmail map[string]string
	now     func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID:    make(map[string]hireauth.Identity),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// GetByEmail implements hireauth.CredentialStore.
func (s *Store) GetByEmail(_ context.Context, email string) (hireauth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return hireauth.Identity{}, hireauth.ErrIdentityNotFound
	}
	return s.byID[id], nil
}

// GetByID implements hireauth.CredentialStore.
func (s *Store) GetByID(_ context.Context, userID string) (hireauth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.byID[userID]
	if !ok {
		return hireauth.Identity{}, hireauth.ErrIdentityNotFound
	}
	return identity, nil
}

// Create implements hireauth.CredentialStore.
func (s *Store) Create(_ context.Context, in hireauth.CreateIdentityInput) (hireauth.Identity, error) {
	if !in.Role.Valid() {
		return hireauth.Identity{}, fmt.Errorf("invalid role %q", in.Role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[in.Email]; exists {
		return hireauth.Identity{}, fmt.Errorf("%w: %s", hireauth.ErrAccountExists, in.Email)
	}
	now := s.now().UTC()
	identity := hireauth.Identity{
		UserID:       internal.NewUserIDAt(now),
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
	}
	s.byID[identity.UserID] = identity
	s.byEmail[identity.Email] = identity.UserID
	return identity, nil
}

// UpdateRole implements hireauth.CredentialStore.
func (s *Store) UpdateRole(_ context.Context, userID string, role hireauth.Role) (hireauth.Identity, error) {
	if !role.Valid() {
		return hireauth.Identity{}, fmt.Errorf("invalid role %q", role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[userID]
	if !ok {
		return hireauth.Identity{}, hireauth.ErrIdentityNotFound
	}
	identity.Role = role
	s.byID[userID] = identity
	return identity, nil
}

// UpdatePasswordHash implements hireauth.PasswordHashUpdater.
func (s *Store) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[userID]
	if !ok {
		return hireauth.ErrIdentityNotFound
	}
	identity.PasswordHash = hash
	s.byID[userID] = identity
	return nil
}

// Delete removes a user. Outstanding refresh credentials for the user stop
// working at their next exchange.
func (s *Store) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[userID]
	if !ok {
		return hireauth.ErrIdentityNotFound
	}
	delete(s.byID, userID)
	delete(s.byEmail, identity.Email)
	return nil
}

// Len returns the number of stored identities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
