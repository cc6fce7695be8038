package adapthttp

import (
	"context"
	"net/http"

	"fieldsync/internal/domain"
)

const analyticsPrefix = "/analytics/incidents"

// AnalyticsClient reads incident aggregates.
type AnalyticsClient struct {
	gw *Gateway
}

var _ domain.AnalyticsClient = (*AnalyticsClient)(nil)

// NewAnalyticsClient returns an AnalyticsClient using gw.
func NewAnalyticsClient(gw *Gateway) *AnalyticsClient {
	return &AnalyticsClient{gw: gw}
}

func (c *AnalyticsClient) CountByType(ctx context.Context) ([]domain.CategoryCount, error) {
	var out []domain.CategoryCount
	err := c.gw.Do(ctx, http.MethodGet, analyticsPrefix+"/count-by-type", nil, &out)
	return out, err
}

func (c *AnalyticsClient) CountByPriority(ctx context.Context) ([]domain.CategoryCount, error) {
	var out []domain.CategoryCount
	err := c.gw.Do(ctx, http.MethodGet, analyticsPrefix+"/count-by-priority", nil, &out)
	return out, err
}

func (c *AnalyticsClient) Locations(ctx context.Context) ([]domain.IncidentLocation, error) {
	var out []domain.IncidentLocation
	err := c.gw.Do(ctx, http.MethodGet, analyticsPrefix+"/locations", nil, &out)
	return out, err
}
