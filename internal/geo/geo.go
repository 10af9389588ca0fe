package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// One degree of latitude spans roughly this many miles.
const milesPerDegree = 69.172

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Bounds computes the rectangle that encloses a radius (in miles) around the
// given point. The longitude delta is scaled by 1/cos(lat) to account for
// meridian convergence; at latitudes approaching the poles cos(lat) tends to
// zero and the delta blows up toward infinity. Known degeneracy, callers near
// the poles are on their own.
func Bounds(lat, lng, radiusMiles float64) BoundingBox {
	latDelta := radiusMiles / milesPerDegree
	lngDelta := radiusMiles / milesPerDegree / math.Cos(lat*math.Pi/180)

	return BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLng: lng - lngDelta,
		MaxLng: lng + lngDelta,
	}
}

// Polygon returns the box as a closed five-point ring, first corner repeated.
func (b BoundingBox) Polygon() orb.Polygon {
	return orb.Polygon{orb.Ring{
		{b.MinLng, b.MinLat},
		{b.MaxLng, b.MinLat},
		{b.MaxLng, b.MaxLat},
		{b.MinLng, b.MaxLat},
		{b.MinLng, b.MinLat},
	}}
}

// Contains reports whether the point lies inside the box. Points exactly on
// an edge count as inside.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return planar.PolygonContains(b.Polygon(), orb.Point{lng, lat})
}

// WithinRadius reports whether the candidate point falls within radiusMiles
// of the center. This is a containment test against the bounding rectangle,
// not a circle: points in the rectangle corners pass even though they are
// further than radiusMiles away. Callers must not assume circular precision.
func WithinRadius(candidateLat, candidateLng, centerLat, centerLng, radiusMiles float64) bool {
	return Bounds(centerLat, centerLng, radiusMiles).Contains(candidateLat, candidateLng)
}
