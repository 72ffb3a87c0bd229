// internal/people/geo.go

package people

import "math"

const earthRadiusKm = 6371

// kmPerDegreeLat is the approximate surface distance of one degree of latitude.
const kmPerDegreeLat = 111.32

// DistanceKm returns the haversine distance between two points in kilometers
// on a spherical-earth approximation. NaN inputs propagate as NaN, which
// callers must treat as "unknown / exclude".
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// BoundingBox is a lat/lng rectangle, a cheap index-friendly superset of the
// true radius disc.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundingBoxAround computes the rectangle covering a radius around center.
// The longitude delta is widened by the latitude cosine. Known weaknesses:
// antimeridian wrap and cos(lat) -> 0 near the poles are not corrected;
// acceptable for a metro-scoped product.
func BoundingBoxAround(center Center, radiusKm float64) BoundingBox {
	latDelta := radiusKm / kmPerDegreeLat
	lngDelta := radiusKm / (kmPerDegreeLat * math.Cos(center.Lat*math.Pi/180))

	return BoundingBox{
		MinLat: center.Lat - latDelta,
		MaxLat: center.Lat + latDelta,
		MinLng: center.Lng - lngDelta,
		MaxLng: center.Lng + lngDelta,
	}
}
