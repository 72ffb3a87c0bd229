// internal/people/filters.go

package people

import "fmt"

// DiscoveryFilters are the hard filters layered onto the proximity query.
// All populated fields are AND-ed; zero values mean "no filter".
type DiscoveryFilters struct {
	Gender      *Gender
	AgeMin      *int
	AgeMax      *int
	InterestIDs []int
}

// Validate rejects malformed filter combinations before any query runs.
func (f *DiscoveryFilters) Validate() error {
	if f.AgeMin != nil && *f.AgeMin < 0 {
		return fmt.Errorf("%w: ageMin must be non-negative", ErrInvalidFilter)
	}
	if f.AgeMax != nil && *f.AgeMax < 0 {
		return fmt.Errorf("%w: ageMax must be non-negative", ErrInvalidFilter)
	}
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		return fmt.Errorf("%w: ageMin exceeds ageMax", ErrInvalidFilter)
	}
	for _, id := range f.InterestIDs {
		if id <= 0 {
			return fmt.Errorf("%w: interest ids must be positive", ErrInvalidFilter)
		}
	}
	return nil
}
