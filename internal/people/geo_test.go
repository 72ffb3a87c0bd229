package people

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(12.9716, 77.5946, 12.9716, 77.5946))
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		d := DistanceKm(12.0, 77.0, 13.0, 77.0)
		assert.InDelta(t, 111.32, d, 0.5)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := DistanceKm(12.9716, 77.5946, 13.0827, 80.2707)
		b := DistanceKm(13.0827, 80.2707, 12.9716, 77.5946)
		assert.InDelta(t, a, b, 1e-9)
	})

	t.Run("bangalore to chennai roughly 290 km", func(t *testing.T) {
		d := DistanceKm(12.9716, 77.5946, 13.0827, 80.2707)
		assert.InDelta(t, 290, d, 10)
	})

	t.Run("nan input propagates", func(t *testing.T) {
		d := DistanceKm(math.NaN(), 77.0, 13.0, 77.0)
		assert.True(t, math.IsNaN(d))
	})
}

func TestBoundingBoxAround(t *testing.T) {
	center := Center{Lat: 12.9716, Lng: 77.5946}

	t.Run("box widens longitude by latitude cosine", func(t *testing.T) {
		box := BoundingBoxAround(center, 30)

		latDelta := box.MaxLat - center.Lat
		lngDelta := box.MaxLng - center.Lng
		assert.InDelta(t, 30/111.32, latDelta, 1e-9)
		assert.Greater(t, lngDelta, latDelta)
	})

	t.Run("box is a superset of the radius disc", func(t *testing.T) {
		const radius = 30.0
		box := BoundingBoxAround(center, radius)

		// Sample points around the circle boundary; all must fall inside
		// the rectangle.
		for deg := 0; deg < 360; deg += 15 {
			rad := float64(deg) * math.Pi / 180
			lat := center.Lat + (radius/111.32)*math.Cos(rad)
			lng := center.Lng + (radius/(111.32*math.Cos(center.Lat*math.Pi/180)))*math.Sin(rad)

			require.True(t, lat >= box.MinLat && lat <= box.MaxLat, "lat out of box at %d deg", deg)
			require.True(t, lng >= box.MinLng && lng <= box.MaxLng, "lng out of box at %d deg", deg)
		}
	})

	t.Run("symmetric around center", func(t *testing.T) {
		box := BoundingBoxAround(center, 15)
		assert.InDelta(t, center.Lat-box.MinLat, box.MaxLat-center.Lat, 1e-9)
		assert.InDelta(t, center.Lng-box.MinLng, box.MaxLng-center.Lng, 1e-9)
	})
}
