package adapthttp

import (
	"context"
	"net/http"

	"fieldsync/internal/domain"
)

// GeoClient reads patrol boundaries from the geographic service.
type GeoClient struct {
	gw *Gateway
}

var _ domain.BoundaryClient = (*GeoClient)(nil)

// NewGeoClient returns a GeoClient using gw.
func NewGeoClient(gw *Gateway) *GeoClient {
	return &GeoClient{gw: gw}
}

// BoundaryFor returns the boundary assigned to userID.
func (c *GeoClient) BoundaryFor(ctx context.Context, userID int64) (*domain.Boundary, error) {
	var b domain.Boundary
	if err := c.gw.Do(ctx, http.MethodGet, idPath("/geo/boundary", userID), nil, &b); err != nil {
		return nil, err
	}
	if b.UserID == 0 {
		b.UserID = userID
	}
	return &b, nil
}
