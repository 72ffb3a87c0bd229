package people

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestDiscoveryFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		filters DiscoveryFilters
		wantErr bool
	}{
		{"empty", DiscoveryFilters{}, false},
		{"age range", DiscoveryFilters{AgeMin: intPtr(18), AgeMax: intPtr(35)}, false},
		{"equal bounds", DiscoveryFilters{AgeMin: intPtr(25), AgeMax: intPtr(25)}, false},
		{"interests", DiscoveryFilters{InterestIDs: []int{1, 7}}, false},
		{"negative min", DiscoveryFilters{AgeMin: intPtr(-1)}, true},
		{"negative max", DiscoveryFilters{AgeMax: intPtr(-5)}, true},
		{"inverted range", DiscoveryFilters{AgeMin: intPtr(40), AgeMax: intPtr(20)}, true},
		{"zero interest id", DiscoveryFilters{InterestIDs: []int{0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseGender(t *testing.T) {
	g, ok := ParseGender("female")
	assert.True(t, ok)
	assert.Equal(t, GenderFemale, g)

	_, ok = ParseGender("unknown")
	assert.False(t, ok)
}
