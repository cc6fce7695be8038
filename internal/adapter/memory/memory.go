// Package memory implements an in-memory credential store for development
// and testing. Nothing survives the process.
package memory

import (
	"context"
	"sync"

	"fieldsync/internal/domain"
)

// Store keeps the credential slots in a map.
type Store struct {
	mu    sync.Mutex
	slots map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{slots: make(map[string][]byte)}
}

// Ensure interfaces are met.
var _ domain.CredentialStore = (*Store)(nil)

// Save writes both slots under one lock.
func (s *Store) Save(ctx context.Context, token string, user domain.SessionUser) error {
	data, err := domain.EncodeUser(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[domain.SlotToken] = []byte(token)
	s.slots[domain.SlotUser] = data
	return nil
}

// Load returns the stored credential. A missing token or unreadable user
// profile is reported as absent.
func (s *Store) Load(ctx context.Context) (string, domain.SessionUser, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := string(s.slots[domain.SlotToken])
	if token == "" {
		return "", domain.SessionUser{}, false, nil
	}
	user, ok := domain.DecodeUser(s.slots[domain.SlotUser])
	if !ok {
		return "", domain.SessionUser{}, false, nil
	}
	return token, user, true, nil
}

// Clear removes both slots.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, domain.SlotToken)
	delete(s.slots, domain.SlotUser)
	return nil
}

// Put sets a raw slot value. It exists so tests can simulate a corrupted
// or half-written store.
func (s *Store) Put(slot string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = value
}
