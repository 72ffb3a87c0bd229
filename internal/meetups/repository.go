// internal/meetups/repository.go

package meetups

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// DiscoverQuery bounds one page of the meetup feed.
type DiscoverQuery struct {
	ViewerID string
	Window   Window
	Limit    int
	Offset   int

	// Optional equality filters
	City       *string
	ActivityID *int64

	// Optional proximity constraint (nearby feed)
	Lat      *float64
	Lng      *float64
	RadiusKm float64
}

type Repository interface {
	Discover(ctx context.Context, q DiscoverQuery) ([]MeetupRow, error)
	GetByID(ctx context.Context, id string) (*MeetupRow, error)
	ListHosting(ctx context.Context, hostID string, includePast bool, limit, offset int) ([]MeetupRow, error)
	ListJoined(ctx context.Context, userID string, limit, offset int) ([]MeetupRow, error)

	Create(ctx context.Context, m *Meetup) error
	Update(ctx context.Context, id string, req UpdateMeetupRequest) error
	SoftDelete(ctx context.Context, id string) error

	GetRequest(ctx context.Context, requestID string) (*JoinRequest, error)
	// FindRequest returns the most relevant request for (meetup, user): any
	// non-declined row wins over declined ones, newest first.
	FindRequest(ctx context.Context, meetupID, userID string) (*JoinRequest, error)
	CreateRequest(ctx context.Context, r *JoinRequest) error
	SetRequestStatus(ctx context.Context, requestID string, status RequestStatus) error
	CountRequestsInWindow(ctx context.Context, userID string, w Window) (int, error)
	ListRequests(ctx context.Context, meetupID string, status *RequestStatus) ([]JoinRequest, error)
	ListSentRequests(ctx context.Context, userID string, limit, offset int) ([]RequestRow, error)
	ListReceivedRequests(ctx context.Context, hostID string, limit, offset int) ([]RequestRow, error)

	AddAttendee(ctx context.Context, a *Attendee) error
	RemoveAttendee(ctx context.Context, meetupID, userID string) error
	ListAttendees(ctx context.Context, meetupID string) ([]Attendee, error)
	CountAttendees(ctx context.Context, meetupID string) (int, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// meetupSelect joins host identity and the accepted-attendee count onto
// every listing row.
const meetupSelect = `
	SELECT m.*,
	       u.name AS host_name,
	       avatar.url AS host_avatar_url,
	       (SELECT COUNT(*) FROM meetup_attendees ma WHERE ma.meetup_id = m.id) AS accepted_count
	FROM meetups m
	INNER JOIN users u ON u.id = m.host_id
	LEFT JOIN LATERAL (
		SELECT COALESCE(up.optimized_url, up.original_url) AS url
		FROM user_photos up
		WHERE up.user_id = m.host_id AND up.image_type = 'avatar' AND up.is_active = true
		ORDER BY up.position ASC
		LIMIT 1
	) avatar ON true`

func (r *postgresRepository) Discover(ctx context.Context, q DiscoverQuery) ([]MeetupRow, error) {
	conds := []string{
		"m.meetup_status = 'active'",
		"u.user_state IN ('approved_free', 'approved_paid')",
	}
	var args []interface{}
	argCount := 1

	arg := func(v interface{}) int {
		args = append(args, v)
		n := argCount
		argCount++
		return n
	}

	conds = append(conds, fmt.Sprintf("m.host_id <> $%d", arg(q.ViewerID)))
	conds = append(conds, fmt.Sprintf(`NOT EXISTS (
		SELECT 1 FROM blocked_user bu
		WHERE (bu.user_id = $%d AND bu.blocked_user_id = m.host_id)
		   OR (bu.user_id = m.host_id AND bu.blocked_user_id = $%d)
	)`, arg(q.ViewerID), arg(q.ViewerID)))

	conds = append(conds, fmt.Sprintf("m.starts_at >= $%d", arg(q.Window.Start)))
	if q.Window.Bounded() {
		conds = append(conds, fmt.Sprintf("m.starts_at <= $%d", arg(q.Window.End)))
	}

	if q.City != nil {
		conds = append(conds, fmt.Sprintf("m.city = $%d", arg(*q.City)))
	}
	if q.ActivityID != nil {
		conds = append(conds, fmt.Sprintf("m.activity_id = $%d", arg(*q.ActivityID)))
	}

	if q.Lat != nil && q.Lng != nil && q.RadiusKm > 0 {
		conds = append(conds, fmt.Sprintf(`m.lat IS NOT NULL AND m.lng IS NOT NULL
		  AND (6371 * acos(LEAST(1.0,
			cos(radians($%d)) * cos(radians(m.lat)) *
			cos(radians(m.lng) - radians($%d)) +
			sin(radians($%d)) * sin(radians(m.lat))))) <= $%d`,
			arg(*q.Lat), arg(*q.Lng), arg(*q.Lat), arg(q.RadiusKm)))
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY m.starts_at ASC, m.id
		LIMIT $%d OFFSET $%d`,
		meetupSelect, strings.Join(conds, "\n\t\t  AND "), arg(q.Limit), arg(q.Offset))

	var rows []MeetupRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("meetup discovery query failed: %w", err)
	}
	return rows, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*MeetupRow, error) {
	var row MeetupRow
	query := meetupSelect + ` WHERE m.id = $1`
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMeetupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meetup: %w", err)
	}
	return &row, nil
}

func (r *postgresRepository) ListHosting(ctx context.Context, hostID string, includePast bool, limit, offset int) ([]MeetupRow, error) {
	query := meetupSelect + `
		WHERE m.host_id = $1 AND m.meetup_status = 'active'`
	args := []interface{}{hostID}

	// Past meetups are hidden unless explicitly asked for
	if !includePast {
		query += fmt.Sprintf(" AND m.starts_at > $%d", len(args)+1)
		args = append(args, time.Now().UTC())
	}

	query += fmt.Sprintf(`
		ORDER BY m.starts_at ASC, m.id
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rows []MeetupRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list hosted meetups: %w", err)
	}
	return rows, nil
}

func (r *postgresRepository) ListJoined(ctx context.Context, userID string, limit, offset int) ([]MeetupRow, error) {
	query := meetupSelect + `
		INNER JOIN meetup_attendees att ON att.meetup_id = m.id AND att.user_id = $1
		WHERE m.meetup_status = 'active'
		ORDER BY m.starts_at ASC, m.id
		LIMIT $2 OFFSET $3`

	var rows []MeetupRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list joined meetups: %w", err)
	}
	return rows, nil
}

func (r *postgresRepository) Create(ctx context.Context, m *Meetup) error {
	query := `
		INSERT INTO meetups (
			id, host_id, name, activity_id, guests, who_pays, currency_code,
			fee_amount, location_text, description, starts_at, ends_at,
			map_url, meetup_status, lat, lng, city, state, country,
			created_at, updated_at
		) VALUES (
			:id, :host_id, :name, :activity_id, :guests, :who_pays, :currency_code,
			:fee_amount, :location_text, :description, :starts_at, :ends_at,
			:map_url, :meetup_status, :lat, :lng, :city, :state, :country,
			:created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create meetup: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, id string, req UpdateMeetupRequest) error {
	sets := []string{}
	var args []interface{}
	argCount := 1

	set := func(col string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argCount))
		args = append(args, v)
		argCount++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Guests != nil {
		set("guests", *req.Guests)
	}
	if req.WhoPays != nil {
		set("who_pays", *req.WhoPays)
	}
	if req.LocationText != nil {
		set("location_text", *req.LocationText)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.StartsAt != nil {
		set("starts_at", *req.StartsAt)
	}
	if req.EndsAt != nil {
		set("ends_at", *req.EndsAt)
	}
	if req.MapURL != nil {
		set("map_url", *req.MapURL)
	}

	if len(sets) == 0 {
		return nil
	}
	set("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE meetups SET %s WHERE id = $%d AND meetup_status = 'active'",
		strings.Join(sets, ", "), argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update meetup: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMeetupNotFound
	}
	return nil
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE meetups SET meetup_status = 'deleted', updated_at = $1 WHERE id = $2 AND meetup_status = 'active'`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete meetup: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMeetupNotFound
	}
	return nil
}

func (r *postgresRepository) GetRequest(ctx context.Context, requestID string) (*JoinRequest, error) {
	var req JoinRequest
	err := r.db.GetContext(ctx, &req, `SELECT * FROM meetup_requests WHERE id = $1`, requestID)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) FindRequest(ctx context.Context, meetupID, userID string) (*JoinRequest, error) {
	// A declined request may coexist with a later pending one; the live row
	// must win or the duplicate check would look at the wrong request.
	var req JoinRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT * FROM meetup_requests
		 WHERE meetup_id = $1 AND user_id = $2
		 ORDER BY CASE WHEN status = 'declined' THEN 1 ELSE 0 END, created_at DESC
		 LIMIT 1`, meetupID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find join request: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) CreateRequest(ctx context.Context, jr *JoinRequest) error {
	query := `
		INSERT INTO meetup_requests (id, meetup_id, user_id, status, message, created_at, updated_at)
		VALUES (:id, :meetup_id, :user_id, :status, :message, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, jr); err != nil {
		return fmt.Errorf("failed to create join request: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetRequestStatus(ctx context.Context, requestID string, status RequestStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE meetup_requests SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), requestID)
	if err != nil {
		return fmt.Errorf("failed to update join request: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *postgresRepository) CountRequestsInWindow(ctx context.Context, userID string, w Window) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM meetup_requests WHERE user_id = $1 AND created_at BETWEEN $2 AND $3`,
		userID, w.Start, w.End)
	if err != nil {
		return 0, fmt.Errorf("failed to count join requests: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) ListRequests(ctx context.Context, meetupID string, status *RequestStatus) ([]JoinRequest, error) {
	query := `SELECT * FROM meetup_requests WHERE meetup_id = $1`
	args := []interface{}{meetupID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at ASC`

	var out []JoinRequest
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) ListSentRequests(ctx context.Context, userID string, limit, offset int) ([]RequestRow, error) {
	query := `
		SELECT mr.*, m.name AS meetup_name, m.host_id, m.starts_at
		FROM meetup_requests mr
		INNER JOIN meetups m ON m.id = mr.meetup_id
		WHERE mr.user_id = $1 AND m.meetup_status = 'active'
		ORDER BY mr.created_at DESC
		LIMIT $2 OFFSET $3`

	var out []RequestRow
	if err := r.db.SelectContext(ctx, &out, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) ListReceivedRequests(ctx context.Context, hostID string, limit, offset int) ([]RequestRow, error) {
	query := `
		SELECT mr.*, m.name AS meetup_name, m.host_id, m.starts_at
		FROM meetup_requests mr
		INNER JOIN meetups m ON m.id = mr.meetup_id
		WHERE m.host_id = $1 AND m.meetup_status = 'active'
		ORDER BY mr.created_at DESC
		LIMIT $2 OFFSET $3`

	var out []RequestRow
	if err := r.db.SelectContext(ctx, &out, query, hostID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list received requests: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) AddAttendee(ctx context.Context, a *Attendee) error {
	query := `
		INSERT INTO meetup_attendees (id, meetup_id, user_id, chat_room_id, created_at)
		VALUES (:id, :meetup_id, :user_id, :chat_room_id, :created_at)
		ON CONFLICT (meetup_id, user_id) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("failed to add attendee: %w", err)
	}
	return nil
}

func (r *postgresRepository) RemoveAttendee(ctx context.Context, meetupID, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM meetup_attendees WHERE meetup_id = $1 AND user_id = $2`, meetupID, userID); err != nil {
		return fmt.Errorf("failed to remove attendee: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListAttendees(ctx context.Context, meetupID string) ([]Attendee, error) {
	var out []Attendee
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM meetup_attendees WHERE meetup_id = $1 ORDER BY created_at ASC`, meetupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) CountAttendees(ctx context.Context, meetupID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM meetup_attendees WHERE meetup_id = $1`, meetupID)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return count, nil
}
