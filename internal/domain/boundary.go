package domain

import "context"

// Geometry is a GeoJSON polygon as served by the geographic service.
// Coordinates are [longitude, latitude] pairs; the first ring is the outer
// boundary and any further rings are holes.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Boundary is the patrol area assigned to a user.
type Boundary struct {
	UserID   int64     `json:"id"`
	Geometry *Geometry `json:"boundary"`
}

// Contains reports whether the point lies inside the boundary. A SUPER_USER
// is not confined to a boundary; callers pass the role to mirror the
// backend's point validation.
func (b *Boundary) Contains(role Role, lat, lng float64) bool {
	if role == RoleSuperUser {
		return true
	}
	if b == nil || b.Geometry == nil || b.Geometry.Type != "Polygon" || len(b.Geometry.Coordinates) == 0 {
		return false
	}
	if !ringContains(b.Geometry.Coordinates[0], lng, lat) {
		return false
	}
	for _, hole := range b.Geometry.Coordinates[1:] {
		if ringContains(hole, lng, lat) {
			return false
		}
	}
	return true
}

// ringContains is the even-odd ray casting test.
func ringContains(ring [][2]float64, x, y float64) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// BoundaryClient is the port for the geographic service.
type BoundaryClient interface {
	BoundaryFor(ctx context.Context, userID int64) (*Boundary, error)
}
