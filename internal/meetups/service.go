// internal/meetups/service.go

package meetups

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// DiscoverParams is one page request against the meetup feed.
type DiscoverParams struct {
	ViewerID string
	Window   WindowKind
	Page     int

	// Optional equality filters
	City       *string
	ActivityID *int64

	// Nearby feed: both coordinates set enables the radius constraint
	Lat *float64
	Lng *float64
}

type Service interface {
	Discover(ctx context.Context, params DiscoverParams) ([]MeetupResponse, error)
	Get(ctx context.Context, id string) (*MeetupResponse, error)
	ListHosting(ctx context.Context, hostID string, page int, includePast bool) ([]MeetupResponse, error)
	ListJoined(ctx context.Context, userID string, page int) ([]MeetupResponse, error)

	Create(ctx context.Context, hostID string, req CreateMeetupRequest) (*MeetupResponse, error)
	Update(ctx context.Context, hostID, meetupID string, req UpdateMeetupRequest) (*MeetupResponse, error)
	Delete(ctx context.Context, hostID, meetupID string) error

	RequestToJoin(ctx context.Context, userID, meetupID string, req JoinMeetupRequest) (*JoinRequest, error)
	JudgeRequest(ctx context.Context, hostID, requestID string, accept bool) error
	ListRequests(ctx context.Context, hostID, meetupID string) ([]JoinRequest, error)
	ListSentRequests(ctx context.Context, userID string, page int) ([]RequestRow, error)
	ListReceivedRequests(ctx context.Context, hostID string, page int) ([]RequestRow, error)
	Leave(ctx context.Context, userID, meetupID string) error
	RemoveParticipant(ctx context.Context, hostID, meetupID, userID string) error
	ListAttendees(ctx context.Context, meetupID string) ([]Attendee, error)
}

type service struct {
	repo          Repository
	redis         *redis.Client // optional quota fast-path
	pageSize      int
	nearbyRadius  float64
	dailyJoinCap  int
	metrics       *Metrics
	now           func() time.Time
}

func NewService(repo Repository, redisClient *redis.Client, pageSize int, nearbyRadiusKm float64, dailyJoinCap int, metrics *Metrics) Service {
	return &service{
		repo:         repo,
		redis:        redisClient,
		pageSize:     pageSize,
		nearbyRadius: nearbyRadiusKm,
		dailyJoinCap: dailyJoinCap,
		metrics:      metrics,
		now:          time.Now,
	}
}

func (s *service) Discover(ctx context.Context, params DiscoverParams) ([]MeetupResponse, error) {
	start := time.Now()

	if params.Page < 1 {
		params.Page = 1
	}

	window, err := ResolveWindow(params.Window, s.now())
	if err != nil {
		return nil, err
	}

	q := DiscoverQuery{
		ViewerID:   params.ViewerID,
		Window:     window,
		City:       params.City,
		ActivityID: params.ActivityID,
		Limit:      s.pageSize,
		Offset:     (params.Page - 1) * s.pageSize,
	}
	if params.Lat != nil && params.Lng != nil {
		q.Lat, q.Lng = params.Lat, params.Lng
		q.RadiusKm = s.nearbyRadius
	}

	rows, err := s.repo.Discover(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DiscoverDuration.Observe(time.Since(start).Seconds())
	}

	return toResponses(rows), nil
}

func (s *service) Get(ctx context.Context, id string) (*MeetupResponse, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != StatusActive {
		return nil, ErrMeetupNotFound
	}
	resp := row.toResponse()
	return &resp, nil
}

func (s *service) ListHosting(ctx context.Context, hostID string, page int, includePast bool) ([]MeetupResponse, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.repo.ListHosting(ctx, hostID, includePast, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *service) ListJoined(ctx context.Context, userID string, page int) ([]MeetupResponse, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.repo.ListJoined(ctx, userID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *service) Create(ctx context.Context, hostID string, req CreateMeetupRequest) (*MeetupResponse, error) {
	now := s.now().UTC()

	m := &Meetup{
		ID:           uuid.New().String(),
		HostID:       hostID,
		Name:         req.Name,
		Guests:       req.Guests,
		WhoPays:      req.WhoPays,
		LocationText: req.LocationText,
		Description:  req.Description,
		StartsAt:     req.StartsAt.UTC(),
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.ActivityID != nil {
		m.ActivityID = sql.NullInt64{Int64: *req.ActivityID, Valid: true}
	}
	if req.CurrencyCode != nil {
		m.CurrencyCode = sql.NullString{String: *req.CurrencyCode, Valid: true}
	}
	if req.FeeAmount != nil {
		m.FeeAmount = sql.NullFloat64{Float64: *req.FeeAmount, Valid: true}
	}
	if req.EndsAt != nil {
		m.EndsAt = sql.NullTime{Time: req.EndsAt.UTC(), Valid: true}
	}
	if req.MapURL != nil {
		m.MapURL = sql.NullString{String: *req.MapURL, Valid: true}
	}
	if req.Lat != nil {
		m.Lat = sql.NullFloat64{Float64: *req.Lat, Valid: true}
	}
	if req.Lng != nil {
		m.Lng = sql.NullFloat64{Float64: *req.Lng, Valid: true}
	}
	if req.City != nil {
		m.City = sql.NullString{String: *req.City, Valid: true}
	}
	if req.State != nil {
		m.State = sql.NullString{String: *req.State, Valid: true}
	}
	if req.Country != nil {
		m.Country = sql.NullString{String: *req.Country, Valid: true}
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MeetupsCreated.Inc()
	}

	return s.Get(ctx, m.ID)
}

func (s *service) Update(ctx context.Context, hostID, meetupID string, req UpdateMeetupRequest) (*MeetupResponse, error) {
	row, err := s.repo.GetByID(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if row.HostID != hostID {
		return nil, ErrNotHost
	}

	if err := s.repo.Update(ctx, meetupID, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, meetupID)
}

func (s *service) Delete(ctx context.Context, hostID, meetupID string) error {
	row, err := s.repo.GetByID(ctx, meetupID)
	if err != nil {
		return err
	}
	if row.HostID != hostID {
		return ErrNotHost
	}
	return s.repo.SoftDelete(ctx, meetupID)
}

func (s *service) RequestToJoin(ctx context.Context, userID, meetupID string, req JoinMeetupRequest) (*JoinRequest, error) {
	row, err := s.repo.GetByID(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if row.Status != StatusActive {
		return nil, ErrMeetupNotFound
	}
	if !row.StartsAt.After(s.now()) {
		return nil, ErrMeetupClosed
	}
	if row.HostID == userID {
		return nil, ErrOwnMeetup
	}

	existing, err := s.repo.FindRequest(ctx, meetupID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != RequestDeclined {
		return nil, ErrAlreadyRequested
	}

	if err := s.checkDailyQuota(ctx, userID); err != nil {
		return nil, err
	}

	if row.AcceptedCount >= row.Guests {
		return nil, ErrMeetupFull
	}

	now := s.now().UTC()
	jr := &JoinRequest{
		ID:        uuid.New().String(),
		MeetupID:  meetupID,
		UserID:    userID,
		Status:    RequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Message != nil {
		jr.Message = sql.NullString{String: *req.Message, Valid: true}
	}

	if err := s.repo.CreateRequest(ctx, jr); err != nil {
		return nil, err
	}

	s.bumpQuotaCounter(ctx, userID)
	if s.metrics != nil {
		s.metrics.JoinRequests.WithLabelValues("created").Inc()
	}

	return jr, nil
}

// checkDailyQuota enforces the per-day join-request cap. A Redis counter
// keyed by the quota day serves as a cheap precheck; the database count is
// authoritative so a cold or flushed cache never over-admits.
func (s *service) checkDailyQuota(ctx context.Context, userID string) error {
	window := DailyQuotaWindow(s.now())

	if s.redis != nil {
		n, err := s.redis.Get(ctx, s.quotaKey(userID, window)).Int()
		if err == nil && n >= s.dailyJoinCap {
			return ErrDailyQuotaReached
		}
	}

	count, err := s.repo.CountRequestsInWindow(ctx, userID, window)
	if err != nil {
		return err
	}
	if count >= s.dailyJoinCap {
		return ErrDailyQuotaReached
	}
	return nil
}

func (s *service) bumpQuotaCounter(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	window := DailyQuotaWindow(s.now())
	key := s.quotaKey(userID, window)

	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, window.End.Add(time.Second))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("meetups: quota counter update failed: %v", err)
	}
}

func (s *service) quotaKey(userID string, w Window) string {
	return fmt.Sprintf("meetups:join-quota:%s:%s", userID, w.Start.Format("2006-01-02"))
}

func (s *service) JudgeRequest(ctx context.Context, hostID, requestID string, accept bool) error {
	jr, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}

	row, err := s.repo.GetByID(ctx, jr.MeetupID)
	if err != nil {
		return err
	}
	if row.HostID != hostID {
		return ErrNotHost
	}
	if jr.Status != RequestPending {
		return ErrRequestNotFound
	}

	if !accept {
		if s.metrics != nil {
			s.metrics.JoinRequests.WithLabelValues("declined").Inc()
		}
		return s.repo.SetRequestStatus(ctx, requestID, RequestDeclined)
	}

	count, err := s.repo.CountAttendees(ctx, jr.MeetupID)
	if err != nil {
		return err
	}
	if count >= row.Guests {
		return ErrMeetupFull
	}

	if err := s.repo.SetRequestStatus(ctx, requestID, RequestAccepted); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.JoinRequests.WithLabelValues("accepted").Inc()
	}

	return s.repo.AddAttendee(ctx, &Attendee{
		ID:        uuid.New().String(),
		MeetupID:  jr.MeetupID,
		UserID:    jr.UserID,
		CreatedAt: s.now().UTC(),
	})
}

func (s *service) ListRequests(ctx context.Context, hostID, meetupID string) ([]JoinRequest, error) {
	row, err := s.repo.GetByID(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if row.HostID != hostID {
		return nil, ErrNotHost
	}
	return s.repo.ListRequests(ctx, meetupID, nil)
}

func (s *service) ListSentRequests(ctx context.Context, userID string, page int) ([]RequestRow, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.ListSentRequests(ctx, userID, s.pageSize, (page-1)*s.pageSize)
}

func (s *service) ListReceivedRequests(ctx context.Context, hostID string, page int) ([]RequestRow, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.ListReceivedRequests(ctx, hostID, s.pageSize, (page-1)*s.pageSize)
}

func (s *service) Leave(ctx context.Context, userID, meetupID string) error {
	return s.repo.RemoveAttendee(ctx, meetupID, userID)
}

func (s *service) RemoveParticipant(ctx context.Context, hostID, meetupID, userID string) error {
	row, err := s.repo.GetByID(ctx, meetupID)
	if err != nil {
		return err
	}
	if row.HostID != hostID {
		return ErrNotHost
	}
	return s.repo.RemoveAttendee(ctx, meetupID, userID)
}

func (s *service) ListAttendees(ctx context.Context, meetupID string) ([]Attendee, error) {
	return s.repo.ListAttendees(ctx, meetupID)
}

func toResponses(rows []MeetupRow) []MeetupResponse {
	out := make([]MeetupResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toResponse())
	}
	return out
}
