package meetups

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	meetups   map[string]*MeetupRow
	requests  map[string]*JoinRequest
	attendees map[string][]Attendee

	requestCount    int // CountRequestsInWindow result
	discovered      []DiscoverQuery
	hostingPastArgs []bool
}

func newFakeRepo() *fakeRepository {
	return &fakeRepository{
		meetups:   map[string]*MeetupRow{},
		requests:  map[string]*JoinRequest{},
		attendees: map[string][]Attendee{},
	}
}

func (f *fakeRepository) addMeetup(id, hostID string, guests int) *MeetupRow {
	row := &MeetupRow{Meetup: Meetup{
		ID:       id,
		HostID:   hostID,
		Guests:   guests,
		Status:   StatusActive,
		StartsAt: time.Now().Add(24 * time.Hour),
	}}
	f.meetups[id] = row
	return row
}

func (f *fakeRepository) Discover(ctx context.Context, q DiscoverQuery) ([]MeetupRow, error) {
	f.discovered = append(f.discovered, q)
	return nil, nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id string) (*MeetupRow, error) {
	row, ok := f.meetups[id]
	if !ok {
		return nil, ErrMeetupNotFound
	}
	row.AcceptedCount = len(f.attendees[id])
	return row, nil
}

func (f *fakeRepository) ListHosting(ctx context.Context, hostID string, includePast bool, limit, offset int) ([]MeetupRow, error) {
	f.hostingPastArgs = append(f.hostingPastArgs, includePast)
	return nil, nil
}

func (f *fakeRepository) ListJoined(ctx context.Context, userID string, limit, offset int) ([]MeetupRow, error) {
	return nil, nil
}

func (f *fakeRepository) Create(ctx context.Context, m *Meetup) error {
	f.meetups[m.ID] = &MeetupRow{Meetup: *m}
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, id string, req UpdateMeetupRequest) error {
	if _, ok := f.meetups[id]; !ok {
		return ErrMeetupNotFound
	}
	if req.Name != nil {
		f.meetups[id].Name = *req.Name
	}
	return nil
}

func (f *fakeRepository) SoftDelete(ctx context.Context, id string) error {
	row, ok := f.meetups[id]
	if !ok {
		return ErrMeetupNotFound
	}
	row.Status = StatusDeleted
	return nil
}

func (f *fakeRepository) GetRequest(ctx context.Context, requestID string) (*JoinRequest, error) {
	jr, ok := f.requests[requestID]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return jr, nil
}

func (f *fakeRepository) FindRequest(ctx context.Context, meetupID, userID string) (*JoinRequest, error) {
	// Same contract as the SQL: a non-declined row wins over declined ones
	var declined *JoinRequest
	for _, jr := range f.requests {
		if jr.MeetupID != meetupID || jr.UserID != userID {
			continue
		}
		if jr.Status != RequestDeclined {
			return jr, nil
		}
		declined = jr
	}
	return declined, nil
}

func (f *fakeRepository) CreateRequest(ctx context.Context, jr *JoinRequest) error {
	f.requests[jr.ID] = jr
	return nil
}

func (f *fakeRepository) SetRequestStatus(ctx context.Context, requestID string, status RequestStatus) error {
	jr, ok := f.requests[requestID]
	if !ok {
		return ErrRequestNotFound
	}
	jr.Status = status
	return nil
}

func (f *fakeRepository) CountRequestsInWindow(ctx context.Context, userID string, w Window) (int, error) {
	return f.requestCount, nil
}

func (f *fakeRepository) ListRequests(ctx context.Context, meetupID string, status *RequestStatus) ([]JoinRequest, error) {
	var out []JoinRequest
	for _, jr := range f.requests {
		if jr.MeetupID == meetupID {
			out = append(out, *jr)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListSentRequests(ctx context.Context, userID string, limit, offset int) ([]RequestRow, error) {
	var out []RequestRow
	for _, jr := range f.requests {
		if jr.UserID == userID {
			out = append(out, RequestRow{JoinRequest: *jr, MeetupName: f.meetups[jr.MeetupID].Name, HostID: f.meetups[jr.MeetupID].HostID})
		}
	}
	return out, nil
}

func (f *fakeRepository) ListReceivedRequests(ctx context.Context, hostID string, limit, offset int) ([]RequestRow, error) {
	var out []RequestRow
	for _, jr := range f.requests {
		if m, ok := f.meetups[jr.MeetupID]; ok && m.HostID == hostID {
			out = append(out, RequestRow{JoinRequest: *jr, MeetupName: m.Name, HostID: m.HostID})
		}
	}
	return out, nil
}

func (f *fakeRepository) AddAttendee(ctx context.Context, a *Attendee) error {
	f.attendees[a.MeetupID] = append(f.attendees[a.MeetupID], *a)
	return nil
}

func (f *fakeRepository) RemoveAttendee(ctx context.Context, meetupID, userID string) error {
	kept := f.attendees[meetupID][:0]
	for _, a := range f.attendees[meetupID] {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	f.attendees[meetupID] = kept
	return nil
}

func (f *fakeRepository) ListAttendees(ctx context.Context, meetupID string) ([]Attendee, error) {
	return f.attendees[meetupID], nil
}

func (f *fakeRepository) CountAttendees(ctx context.Context, meetupID string) (int, error) {
	return len(f.attendees[meetupID]), nil
}

func newTestService(repo Repository) *service {
	return NewService(repo, nil, 20, 15, 3, nil).(*service)
}

func TestRequestToJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending request", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 5)
		svc := newTestService(repo)

		jr, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		require.NoError(t, err)
		assert.Equal(t, RequestPending, jr.Status)
		assert.Equal(t, "m1", jr.MeetupID)
		assert.Equal(t, "guest", jr.UserID)
	})

	t.Run("host cannot join own meetup", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 5)
		svc := newTestService(repo)

		_, err := svc.RequestToJoin(ctx, "host", "m1", JoinMeetupRequest{})
		assert.ErrorIs(t, err, ErrOwnMeetup)
	})

	t.Run("pending request cannot be repeated", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 5)
		svc := newTestService(repo)

		_, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		require.NoError(t, err)

		_, err = svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		assert.ErrorIs(t, err, ErrAlreadyRequested)
	})

	t.Run("meetup that already started is closed", func(t *testing.T) {
		repo := newFakeRepo()
		row := repo.addMeetup("m1", "host", 5)
		row.StartsAt = time.Now().Add(-time.Hour)
		svc := newTestService(repo)

		_, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		assert.ErrorIs(t, err, ErrMeetupClosed)
	})

	t.Run("declined plus newer pending pair still blocks", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 5)
		repo.requests["r1"] = &JoinRequest{ID: "r1", MeetupID: "m1", UserID: "guest", Status: RequestDeclined}
		repo.requests["r2"] = &JoinRequest{ID: "r2", MeetupID: "m1", UserID: "guest", Status: RequestPending}
		svc := newTestService(repo)

		_, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		assert.ErrorIs(t, err, ErrAlreadyRequested)
	})

	t.Run("declined request can be retried", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 5)
		repo.requests["r1"] = &JoinRequest{ID: "r1", MeetupID: "m1", UserID: "guest", Status: RequestDeclined}
		svc := newTestService(repo)

		_, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		assert.NoError(t, err)
	})

	t.Run("daily cap blocks the fourth request", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 5)
		repo.requestCount = 3
		svc := newTestService(repo)

		_, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		assert.ErrorIs(t, err, ErrDailyQuotaReached)
	})

	t.Run("full meetup rejects new requests", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 1)
		repo.attendees["m1"] = []Attendee{{MeetupID: "m1", UserID: "other"}}
		svc := newTestService(repo)

		_, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{})
		assert.ErrorIs(t, err, ErrMeetupFull)
	})

	t.Run("message is stored", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 5)
		svc := newTestService(repo)

		msg := "count me in"
		jr, err := svc.RequestToJoin(ctx, "guest", "m1", JoinMeetupRequest{Message: &msg})
		require.NoError(t, err)
		assert.Equal(t, sql.NullString{String: msg, Valid: true}, jr.Message)
	})
}

func TestJudgeRequest(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeRepository, *service) {
		repo := newFakeRepo()
		repo.addMeetup("m1", "host", 2)
		repo.requests["r1"] = &JoinRequest{ID: "r1", MeetupID: "m1", UserID: "guest", Status: RequestPending}
		return repo, newTestService(repo)
	}

	t.Run("accept adds an attendee", func(t *testing.T) {
		repo, svc := setup()

		require.NoError(t, svc.JudgeRequest(ctx, "host", "r1", true))
		assert.Equal(t, RequestAccepted, repo.requests["r1"].Status)
		require.Len(t, repo.attendees["m1"], 1)
		assert.Equal(t, "guest", repo.attendees["m1"][0].UserID)
	})

	t.Run("decline leaves attendees untouched", func(t *testing.T) {
		repo, svc := setup()

		require.NoError(t, svc.JudgeRequest(ctx, "host", "r1", false))
		assert.Equal(t, RequestDeclined, repo.requests["r1"].Status)
		assert.Empty(t, repo.attendees["m1"])
	})

	t.Run("only the host can judge", func(t *testing.T) {
		_, svc := setup()
		assert.ErrorIs(t, svc.JudgeRequest(ctx, "stranger", "r1", true), ErrNotHost)
	})

	t.Run("accept fails once the meetup is full", func(t *testing.T) {
		repo, svc := setup()
		repo.attendees["m1"] = []Attendee{
			{MeetupID: "m1", UserID: "a"},
			{MeetupID: "m1", UserID: "b"},
		}

		assert.ErrorIs(t, svc.JudgeRequest(ctx, "host", "r1", true), ErrMeetupFull)
		assert.Equal(t, RequestPending, repo.requests["r1"].Status)
	})

	t.Run("already judged requests cannot be judged again", func(t *testing.T) {
		repo, svc := setup()
		repo.requests["r1"].Status = RequestAccepted

		assert.ErrorIs(t, svc.JudgeRequest(ctx, "host", "r1", true), ErrRequestNotFound)
	})
}

func TestHostOnlyMutations(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	repo.addMeetup("m1", "host", 5)
	svc := newTestService(repo)

	name := "Sunday morning trek"
	_, err := svc.Update(ctx, "stranger", "m1", UpdateMeetupRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotHost)

	assert.ErrorIs(t, svc.Delete(ctx, "stranger", "m1"), ErrNotHost)
	assert.ErrorIs(t, svc.RemoveParticipant(ctx, "stranger", "m1", "guest"), ErrNotHost)

	require.NoError(t, svc.Delete(ctx, "host", "m1"))
	assert.Equal(t, StatusDeleted, repo.meetups["m1"].Status)
}

func TestDiscoverPaging(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	svc := newTestService(repo)
	svc.now = func() time.Time { return ist(2024, 5, 15, 10, 0, 0) }

	_, err := svc.Discover(ctx, DiscoverParams{ViewerID: "v", Window: WindowThisWeek, Page: 3})
	require.NoError(t, err)

	require.Len(t, repo.discovered, 1)
	q := repo.discovered[0]
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 40, q.Offset)
	assert.Equal(t, ist(2024, 5, 13, 0, 0, 0), q.Window.Start)
	assert.Equal(t, ist(2024, 5, 19, 23, 59, 59), q.Window.End)
	assert.Nil(t, q.Lat)

	t.Run("nearby constraint forwarded", func(t *testing.T) {
		lat, lng := 12.9716, 77.5946
		_, err := svc.Discover(ctx, DiscoverParams{ViewerID: "v", Window: WindowUpcoming, Lat: &lat, Lng: &lng})
		require.NoError(t, err)

		q := repo.discovered[len(repo.discovered)-1]
		require.NotNil(t, q.Lat)
		assert.Equal(t, 15.0, q.RadiusKm)
	})

	t.Run("city and activity filters forwarded", func(t *testing.T) {
		city := "Mumbai"
		activityID := int64(3)
		_, err := svc.Discover(ctx, DiscoverParams{
			ViewerID:   "v",
			Window:     WindowUpcoming,
			City:       &city,
			ActivityID: &activityID,
		})
		require.NoError(t, err)

		q := repo.discovered[len(repo.discovered)-1]
		require.NotNil(t, q.City)
		assert.Equal(t, "Mumbai", *q.City)
		require.NotNil(t, q.ActivityID)
		assert.Equal(t, int64(3), *q.ActivityID)
	})

	t.Run("unknown window rejected", func(t *testing.T) {
		_, err := svc.Discover(ctx, DiscoverParams{ViewerID: "v", Window: WindowKind("someday")})
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestListHostingPastVisibility(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.ListHosting(ctx, "host", 1, false)
	require.NoError(t, err)
	_, err = svc.ListHosting(ctx, "host", 1, true)
	require.NoError(t, err)

	// Past meetups are hidden by default and shown only on request
	assert.Equal(t, []bool{false, true}, repo.hostingPastArgs)
}

func TestRequestListings(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.addMeetup("m1", "host", 5)
	repo.requests["r1"] = &JoinRequest{ID: "r1", MeetupID: "m1", UserID: "guest", Status: RequestPending}
	svc := newTestService(repo)

	sent, err := svc.ListSentRequests(ctx, "guest", 1)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "m1", sent[0].MeetupID)

	received, err := svc.ListReceivedRequests(ctx, "host", 1)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "guest", received[0].UserID)

	none, err := svc.ListSentRequests(ctx, "host", 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}
