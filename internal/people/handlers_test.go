package people

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	h := NewHandler(nil, nil)

	parse := func(t *testing.T, query string) (DiscoverParams, error) {
		t.Helper()
		r := httptest.NewRequest("GET", "/api/v1/people?"+query, nil)
		return h.parseParams(r)
	}

	t.Run("maxDistanceKm sets the radius", func(t *testing.T) {
		params, err := parse(t, "maxDistanceKm=12.5")
		require.NoError(t, err)
		assert.Equal(t, 12.5, params.RadiusKm)
	})

	t.Run("radiusKm works as an alias", func(t *testing.T) {
		params, err := parse(t, "radiusKm=8")
		require.NoError(t, err)
		assert.Equal(t, 8.0, params.RadiusKm)
	})

	t.Run("maxDistanceKm wins over the alias", func(t *testing.T) {
		params, err := parse(t, "maxDistanceKm=10&radiusKm=50")
		require.NoError(t, err)
		assert.Equal(t, 10.0, params.RadiusKm)
	})

	t.Run("non-positive radius rejected", func(t *testing.T) {
		_, err := parse(t, "maxDistanceKm=0")
		assert.Error(t, err)
		_, err = parse(t, "maxDistanceKm=-3")
		assert.Error(t, err)
	})

	t.Run("lat and lng must come together", func(t *testing.T) {
		_, err := parse(t, "lat=12.9")
		assert.Error(t, err)

		params, err := parse(t, "lat=12.9&lng=77.5")
		require.NoError(t, err)
		require.NotNil(t, params.Center)
		assert.Equal(t, 12.9, params.Center.Lat)
	})

	t.Run("filters parsed", func(t *testing.T) {
		params, err := parse(t, "gender=female&ageMin=21&ageMax=35&interestIds=1,4,9&page=2")
		require.NoError(t, err)
		require.NotNil(t, params.Filters.Gender)
		assert.Equal(t, GenderFemale, *params.Filters.Gender)
		assert.Equal(t, 21, *params.Filters.AgeMin)
		assert.Equal(t, 35, *params.Filters.AgeMax)
		assert.Equal(t, []int{1, 4, 9}, params.Filters.InterestIDs)
		assert.Equal(t, 2, params.Page)
	})
}
