package domain

import "context"

// CategoryCount is one bucket of an incident aggregate.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// IncidentLocation is a bare coordinate pair used for heat maps.
type IncidentLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Analytics is the aggregate view rendered by the analytics page.
type Analytics struct {
	ByType     []CategoryCount
	ByPriority []CategoryCount
	Locations  []IncidentLocation
}

// AnalyticsClient is the port for the analytics service.
type AnalyticsClient interface {
	CountByType(ctx context.Context) ([]CategoryCount, error)
	CountByPriority(ctx context.Context) ([]CategoryCount, error)
	Locations(ctx context.Context) ([]IncidentLocation, error)
}
