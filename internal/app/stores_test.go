package app_test

import (
	"context"
	"errors"
	"testing"

	"fieldsync/internal/app"
	"fieldsync/internal/domain"
)

type mockBoundaryClient struct {
	boundaryFn func(ctx context.Context, userID int64) (*domain.Boundary, error)
}

func (m *mockBoundaryClient) BoundaryFor(ctx context.Context, userID int64) (*domain.Boundary, error) {
	if m.boundaryFn != nil {
		return m.boundaryFn(ctx, userID)
	}
	return nil, nil
}

func TestBoundaryStore_Fetch(t *testing.T) {
	want := &domain.Boundary{UserID: 4, Geometry: &domain.Geometry{Type: "Polygon"}}
	client := &mockBoundaryClient{
		boundaryFn: func(_ context.Context, userID int64) (*domain.Boundary, error) {
			if userID != 4 {
				t.Errorf("expected user 4, got %d", userID)
			}
			return want, nil
		},
	}
	s := app.NewBoundaryStore(client)
	s.FetchBoundary(context.Background(), 4)

	if s.Boundary() != want {
		t.Errorf("expected boundary to be stored")
	}
	if s.ErrorMessage() != "" || s.Loading() {
		t.Errorf("unexpected state: err=%q loading=%v", s.ErrorMessage(), s.Loading())
	}
}

func TestBoundaryStore_FetchFailure(t *testing.T) {
	calls := 0
	client := &mockBoundaryClient{
		boundaryFn: func(context.Context, int64) (*domain.Boundary, error) {
			calls++
			if calls == 1 {
				return &domain.Boundary{UserID: 4}, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	s := app.NewBoundaryStore(client)
	s.FetchBoundary(context.Background(), 4)
	s.FetchBoundary(context.Background(), 4)

	if s.Boundary() != nil {
		t.Error("expected boundary cleared after failure")
	}
	if s.ErrorMessage() != "Failed to load user boundary." {
		t.Errorf("unexpected message %q", s.ErrorMessage())
	}
	if s.Loading() {
		t.Error("expected loading false")
	}
}

type mockAnalyticsClient struct {
	byTypeFn     func(ctx context.Context) ([]domain.CategoryCount, error)
	byPriorityFn func(ctx context.Context) ([]domain.CategoryCount, error)
	locationsFn  func(ctx context.Context) ([]domain.IncidentLocation, error)
}

func (m *mockAnalyticsClient) CountByType(ctx context.Context) ([]domain.CategoryCount, error) {
	if m.byTypeFn != nil {
		return m.byTypeFn(ctx)
	}
	return nil, nil
}

func (m *mockAnalyticsClient) CountByPriority(ctx context.Context) ([]domain.CategoryCount, error) {
	if m.byPriorityFn != nil {
		return m.byPriorityFn(ctx)
	}
	return nil, nil
}

func (m *mockAnalyticsClient) Locations(ctx context.Context) ([]domain.IncidentLocation, error) {
	if m.locationsFn != nil {
		return m.locationsFn(ctx)
	}
	return nil, nil
}

func fullAnalyticsClient() *mockAnalyticsClient {
	return &mockAnalyticsClient{
		byTypeFn: func(context.Context) ([]domain.CategoryCount, error) {
			return []domain.CategoryCount{{Name: "FIRE", Count: 3}, {Name: "THEFT", Count: 1}}, nil
		},
		byPriorityFn: func(context.Context) ([]domain.CategoryCount, error) {
			return []domain.CategoryCount{{Name: "HIGH", Count: 4}}, nil
		},
		locationsFn: func(context.Context) ([]domain.IncidentLocation, error) {
			return []domain.IncidentLocation{{Latitude: 1, Longitude: 2}}, nil
		},
	}
}

func TestAnalyticsStore_Fetch(t *testing.T) {
	s := app.NewAnalyticsStore(fullAnalyticsClient())
	s.FetchAnalytics(context.Background())

	a := s.Analytics()
	if len(a.ByType) != 2 || len(a.ByPriority) != 1 || len(a.Locations) != 1 {
		t.Fatalf("unexpected analytics %+v", a)
	}
	if a.ByType[0].Name != "FIRE" || a.ByType[0].Count != 3 {
		t.Errorf("unexpected first bucket %+v", a.ByType[0])
	}
	if s.Loading() {
		t.Error("expected loading false")
	}
}

func TestAnalyticsStore_PartialFailureResetsAll(t *testing.T) {
	client := fullAnalyticsClient()
	s := app.NewAnalyticsStore(client)
	s.FetchAnalytics(context.Background())

	client.locationsFn = func(context.Context) ([]domain.IncidentLocation, error) {
		return nil, errors.New("boom")
	}
	s.FetchAnalytics(context.Background())

	a := s.Analytics()
	if len(a.ByType) != 0 || len(a.ByPriority) != 0 || len(a.Locations) != 0 {
		t.Errorf("expected every aggregate reset, got %+v", a)
	}
}

func TestUIState(t *testing.T) {
	u := app.NewUIState()
	changes := 0
	u.Subscribe(func() { changes++ })

	if _, ok := u.MapFocus(); ok {
		t.Fatal("expected no initial focus")
	}
	zoom := 14
	u.SetMapFocus(app.MapFocus{Lat: 6.5, Lng: 3.4, Zoom: &zoom})
	f, ok := u.MapFocus()
	if !ok || f.Lat != 6.5 || *f.Zoom != 14 {
		t.Errorf("unexpected focus %+v", f)
	}
	u.ClearMapFocus()
	if _, ok := u.MapFocus(); ok {
		t.Error("expected focus cleared")
	}

	u.OpenReportIncidentModal(&[2]float64{6.5, 3.4})
	m := u.ReportModal()
	if !m.Open || m.Lat == nil || *m.Lat != 6.5 || *m.Lng != 3.4 {
		t.Errorf("unexpected modal %+v", m)
	}
	u.CloseReportIncidentModal()
	m = u.ReportModal()
	if m.Open || m.Lat == nil {
		t.Errorf("expected closed modal keeping coordinates, got %+v", m)
	}
	u.OpenReportIncidentModal(nil)
	if m := u.ReportModal(); !m.Open || m.Lat != nil {
		t.Errorf("expected open modal without coordinates, got %+v", m)
	}

	if changes != 5 {
		t.Errorf("expected 5 notifications, got %d", changes)
	}
}
