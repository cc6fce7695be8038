package app

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"fieldsync/internal/domain"
)

// AnalyticsStore holds the incident aggregates shown on the analytics page.
type AnalyticsStore struct {
	client domain.AnalyticsClient

	mu      sync.Mutex
	data    domain.Analytics
	loading bool

	observers notifier
}

// NewAnalyticsStore creates an empty AnalyticsStore.
func NewAnalyticsStore(client domain.AnalyticsClient) *AnalyticsStore {
	return &AnalyticsStore{client: client}
}

// FetchAnalytics loads all aggregates concurrently. If any of them fails,
// every aggregate is reset to empty and the failure is only logged.
func (s *AnalyticsStore) FetchAnalytics(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.observers.notify()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.observers.notify()
	}()

	var next domain.Analytics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		next.ByType, err = s.client.CountByType(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		next.ByPriority, err = s.client.CountByPriority(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		next.Locations, err = s.client.Locations(gctx)
		return err
	})

	err := g.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("analytics: fetch failed: %v", err)
		s.data = domain.Analytics{}
		return
	}
	s.data = next
}

// Analytics returns a copy of the loaded aggregates.
func (s *AnalyticsStore) Analytics() domain.Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Analytics{
		ByType:     append([]domain.CategoryCount(nil), s.data.ByType...),
		ByPriority: append([]domain.CategoryCount(nil), s.data.ByPriority...),
		Locations:  append([]domain.IncidentLocation(nil), s.data.Locations...),
	}
}

// Loading reports whether a fetch is in flight.
func (s *AnalyticsStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Subscribe registers fn to be called after every state change.
func (s *AnalyticsStore) Subscribe(fn func()) (unsubscribe func()) {
	return s.observers.subscribe(fn)
}
