package app

import (
	"context"
	"log"
	"sync"

	"fieldsync/internal/domain"
)

// boundaryLoadFailed is shown in place of the map overlay when the fetch fails.
const boundaryLoadFailed = "Failed to load user boundary."

// BoundaryStore holds the patrol boundary of one user.
type BoundaryStore struct {
	client domain.BoundaryClient

	mu       sync.Mutex
	boundary *domain.Boundary
	loading  bool
	errMsg   string

	observers notifier
}

// NewBoundaryStore creates an empty BoundaryStore.
func NewBoundaryStore(client domain.BoundaryClient) *BoundaryStore {
	return &BoundaryStore{client: client}
}

// FetchBoundary loads the boundary assigned to userID. Failures clear the
// boundary and set ErrorMessage; nothing is returned to the caller.
func (s *BoundaryStore) FetchBoundary(ctx context.Context, userID int64) {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
	s.observers.notify()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.observers.notify()
	}()

	b, err := s.client.BoundaryFor(ctx, userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("boundary: fetch for user %d failed: %v", userID, err)
		s.boundary = nil
		s.errMsg = boundaryLoadFailed
		return
	}
	s.boundary = b
}

// Boundary returns the loaded boundary, or nil.
func (s *BoundaryStore) Boundary() *domain.Boundary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundary
}

// Loading reports whether a fetch is in flight.
func (s *BoundaryStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ErrorMessage is the display message of the last failed fetch.
func (s *BoundaryStore) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Subscribe registers fn to be called after every state change.
func (s *BoundaryStore) Subscribe(fn func()) (unsubscribe func()) {
	return s.observers.subscribe(fn)
}
