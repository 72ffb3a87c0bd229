// internal/people/repository.go

package people

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// BucketQuery describes one proximity- and filter-bounded candidate fetch.
// Gender nil means no gender predicate (the bucket spans all genders).
type BucketQuery struct {
	ViewerID string
	Gender   *Gender
	Center   Center
	RadiusKm float64
	Limit    int
	Offset   int
	Filters  DiscoveryFilters
}

type Repository interface {
	// GetViewerCenter returns the viewer's current coordinates, or nil when
	// the viewer has not supplied a location yet.
	GetViewerCenter(ctx context.Context, userID string) (*Center, error)

	// FetchBucket runs the proximity query for one gender bucket: bounding
	// box plus hard filters plus ranking order, limit/offset applied in SQL.
	FetchBucket(ctx context.Context, q BucketQuery) ([]CandidateRow, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetViewerCenter(ctx context.Context, userID string) (*Center, error) {
	var row struct {
		Lat sql.NullFloat64 `db:"lat"`
		Lng sql.NullFloat64 `db:"lng"`
	}

	// user_id is the PK (single row), but order by updated_at anyway for safety
	query := `
		SELECT lat, lng FROM user_location
		WHERE user_id = $1
		ORDER BY updated_at DESC NULLS LAST
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &row, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get viewer location: %w", err)
	}
	if !row.Lat.Valid || !row.Lng.Valid {
		return nil, nil
	}

	return &Center{Lat: row.Lat.Float64, Lng: row.Lng.Float64}, nil
}

// sphericalDistanceSQL is the exact great-circle distance expression pushed
// down so the radius predicate applies before LIMIT/OFFSET. The Go-side
// DistanceKm annotation re-checks the same bound after scanning.
const sphericalDistanceSQL = `(6371 * acos(LEAST(1.0,
	cos(radians($%d)) * cos(radians(ul.lat)) *
	cos(radians(ul.lng) - radians($%d)) +
	sin(radians($%d)) * sin(radians(ul.lat)))))`

func (r *postgresRepository) FetchBucket(ctx context.Context, q BucketQuery) ([]CandidateRow, error) {
	box := BoundingBoxAround(q.Center, q.RadiusKm)

	var conds []string
	var args []interface{}
	argCount := 1

	push := func(cond string, vals ...interface{}) {
		placeholders := make([]interface{}, len(vals))
		for i := range vals {
			placeholders[i] = argCount
			args = append(args, vals[i])
			argCount++
		}
		conds = append(conds, fmt.Sprintf(cond, placeholders...))
	}

	push("u.id <> $%d", q.ViewerID)

	states := make([]string, len(DiscoverableStates))
	for i, st := range DiscoverableStates {
		states[i] = string(st)
	}
	push("u.user_state = ANY($%d)", pq.Array(states))

	if q.Gender != nil {
		push("u.gender = $%d", string(*q.Gender))
	}

	// Bounding rectangle: index-friendly superset of the radius disc
	push("ul.lat BETWEEN $%d AND $%d", box.MinLat, box.MaxLat)
	push("ul.lng BETWEEN $%d AND $%d", box.MinLng, box.MaxLng)

	// Blocked in either direction excludes the pair
	push(`NOT EXISTS (
		SELECT 1 FROM blocked_user bu
		WHERE (bu.user_id = $%d AND bu.blocked_user_id = u.id)
		   OR (bu.user_id = u.id AND bu.blocked_user_id = $%d)
	)`, q.ViewerID, q.ViewerID)

	if len(q.Filters.InterestIDs) > 0 {
		push(`EXISTS (
			SELECT 1 FROM user_interests ui
			WHERE ui.user_id = u.id AND ui.interest_id = ANY($%d)
		)`, pq.Array(q.Filters.InterestIDs))
	}

	// NULL dob makes the comparison NULL, which excludes the row whenever an
	// age filter is active
	if q.Filters.AgeMin != nil {
		push("DATE_PART('year', AGE(CURRENT_DATE, u.dob)) >= $%d", *q.Filters.AgeMin)
	}
	if q.Filters.AgeMax != nil {
		push("DATE_PART('year', AGE(CURRENT_DATE, u.dob)) <= $%d", *q.Filters.AgeMax)
	}

	// Exact distance refinement inside SQL so pagination stays stable
	distExpr := fmt.Sprintf(sphericalDistanceSQL, argCount, argCount+1, argCount+2)
	args = append(args, q.Center.Lat, q.Center.Lng, q.Center.Lat)
	argCount += 3
	conds = append(conds, fmt.Sprintf("%s <= $%d", distExpr, argCount))
	args = append(args, q.RadiusKm)
	argCount++

	limitArg := argCount
	args = append(args, q.Limit)
	argCount++
	offsetArg := argCount
	args = append(args, q.Offset)

	query := fmt.Sprintf(`
		WITH latest_approval AS (
			SELECT al.user_id, MAX(al.created_at) AS approval_at
			FROM admin_logs al
			WHERE al.action_type IN ('profile_approved', 'user_state:approved_free', 'user_state:approved_paid')
			GROUP BY al.user_id
		)
		SELECT u.id,
		       u.name,
		       u.gender,
		       u.city,
		       u.state,
		       u.country,
		       u.dob,
		       u.bio,
		       u.updated_at,
		       la.approval_at,
		       ul.lat,
		       ul.lng,
		       COALESCE(avatar.optimized_url, avatar.original_url) AS avatar_url
		FROM users u
		INNER JOIN user_location ul ON ul.user_id = u.id
		LEFT JOIN latest_approval la ON la.user_id = u.id
		LEFT JOIN LATERAL (
			SELECT up.optimized_url, up.original_url
			FROM user_photos up
			WHERE up.user_id = u.id AND up.image_type = 'avatar' AND up.is_active = true
			ORDER BY up.position ASC
			LIMIT 1
		) avatar ON true
		WHERE %s
		ORDER BY la.approval_at DESC NULLS LAST, u.updated_at DESC NULLS LAST, u.id
		LIMIT $%d OFFSET $%d`,
		strings.Join(conds, "\n\t\t  AND "),
		limitArg, offsetArg,
	)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("proximity query failed: %w", err)
	}
	defer rows.Close()

	var out []CandidateRow
	for rows.Next() {
		var c CandidateRow
		if err := rows.StructScan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}

		// Annotate with the exact distance and drop anything outside the
		// radius; the rectangle is a superset of the true disc, and NaN
		// coordinates must never reach a page.
		c.DistanceKm = DistanceKm(q.Center.Lat, q.Center.Lng, c.Lat, c.Lng)
		if math.IsNaN(c.DistanceKm) || c.DistanceKm > q.RadiusKm {
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("proximity query failed: %w", err)
	}

	return out, nil
}
