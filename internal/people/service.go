// internal/people/service.go

package people

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DiscoverParams is one page request against the people feed.
type DiscoverParams struct {
	ViewerID string
	Page     int
	RadiusKm float64 // 0 means the configured default
	Center   *Center // overrides the stored viewer location when set
	Filters  DiscoveryFilters
}

// Service implements people discovery: proximity candidates, hard filters,
// gender-fair interleaving and recency ranking.
type Service interface {
	Discover(ctx context.Context, params DiscoverParams) ([]Person, error)
}

type service struct {
	repo            Repository
	defaultRadiusKm float64
	pageSize        int
	metrics         *Metrics
	now             func() time.Time
}

func NewService(repo Repository, defaultRadiusKm float64, pageSize int, metrics *Metrics) Service {
	return &service{
		repo:            repo,
		defaultRadiusKm: defaultRadiusKm,
		pageSize:        pageSize,
		metrics:         metrics,
		now:             time.Now,
	}
}

func (s *service) Discover(ctx context.Context, params DiscoverParams) ([]Person, error) {
	start := time.Now()

	if err := params.Filters.Validate(); err != nil {
		return nil, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	radius := params.RadiusKm
	if radius <= 0 {
		radius = s.defaultRadiusKm
	}

	center := params.Center
	if center == nil {
		stored, err := s.repo.GetViewerCenter(ctx, params.ViewerID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, ErrLocationRequired
		}
		center = stored
	}

	var merged []CandidateRow
	var err error
	if params.Filters.Gender != nil {
		merged, err = s.fetchSingleBucket(ctx, params, *center, radius)
	} else {
		merged, err = s.fetchInterleaved(ctx, params, *center, radius)
	}
	if err != nil {
		return nil, err
	}

	ranked := RankCandidates(merged, s.pageSize)

	now := s.now()
	people := make([]Person, 0, len(ranked))
	for _, row := range ranked {
		people = append(people, Shape(row, now))
	}

	if s.metrics != nil {
		s.metrics.DiscoverDuration.Observe(time.Since(start).Seconds())
		s.metrics.DiscoverResults.Observe(float64(len(people)))
	}

	return people, nil
}

// fetchSingleBucket serves an explicit gender filter: one bucket paged at the
// full page size, no interleaving.
func (s *service) fetchSingleBucket(ctx context.Context, params DiscoverParams, center Center, radius float64) ([]CandidateRow, error) {
	q := BucketQuery{
		ViewerID: params.ViewerID,
		Gender:   params.Filters.Gender,
		Center:   center,
		RadiusKm: radius,
		Limit:    s.pageSize,
		Offset:   (params.Page - 1) * s.pageSize,
		Filters:  params.Filters,
	}
	return s.repo.FetchBucket(ctx, q)
}

// fetchInterleaved serves the no-gender-filter path: male and female buckets
// fetched concurrently with half-page quotas each, then a single backfill
// round when exactly one bucket comes up short.
func (s *service) fetchInterleaved(ctx context.Context, params DiscoverParams, center Center, radius float64) ([]CandidateRow, error) {
	quota := s.pageSize / 2
	offset := (params.Page - 1) * quota

	genders := [2]Gender{GenderMale, GenderFemale}
	var buckets [2][]CandidateRow
	var errs [2]error

	var wg sync.WaitGroup
	for i := range genders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g := genders[i]
			buckets[i], errs[i] = s.repo.FetchBucket(ctx, BucketQuery{
				ViewerID: params.ViewerID,
				Gender:   &g,
				Center:   center,
				RadiusKm: radius,
				Limit:    quota,
				Offset:   offset,
				Filters:  params.Filters,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%s bucket: %w", genders[i], err)
		}
	}

	merged := append([]CandidateRow{}, buckets[0]...)
	merged = append(merged, buckets[1]...)

	// Backfill: when one bucket is exhausted and the other filled its quota,
	// the full bucket likely has more rows beyond its own pagination window.
	// One extra fetch tops the page up; backfill rows land after the primary
	// rows and the ranker re-sorts everything anyway.
	for i := range genders {
		other := 1 - i
		shortfall := quota - len(buckets[i])
		if shortfall > 0 && len(buckets[other]) == quota {
			g := genders[other]
			extra, err := s.repo.FetchBucket(ctx, BucketQuery{
				ViewerID: params.ViewerID,
				Gender:   &g,
				Center:   center,
				RadiusKm: radius,
				Limit:    shortfall,
				Offset:   offset + quota,
				Filters:  params.Filters,
			})
			if err != nil {
				return nil, fmt.Errorf("%s backfill: %w", g, err)
			}
			merged = append(merged, extra...)
			break
		}
	}

	return merged, nil
}
