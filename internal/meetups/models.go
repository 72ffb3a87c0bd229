// internal/meetups/models.go

package meetups

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrMeetupNotFound    = errors.New("meetup not found")
	ErrRequestNotFound   = errors.New("join request not found")
	ErrNotHost           = errors.New("only the host can perform this action")
	ErrOwnMeetup         = errors.New("hosts cannot request to join their own meetup")
	ErrAlreadyRequested  = errors.New("a join request for this meetup already exists")
	ErrMeetupClosed      = errors.New("meetup is no longer open for requests")
	ErrDailyQuotaReached = errors.New("daily join request limit reached")
	ErrMeetupFull        = errors.New("meetup has no open guest spots")
	ErrInvalidWindow     = errors.New("unknown time window")
)

// MeetupStatus is the lifecycle of a meetup listing.
type MeetupStatus string

const (
	StatusActive  MeetupStatus = "active"
	StatusDeleted MeetupStatus = "deleted"
)

// RequestStatus is the lifecycle of a join request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// Meetup is the full listing row.
type Meetup struct {
	ID           string          `db:"id" json:"id"`
	HostID       string          `db:"host_id" json:"hostId"`
	Name         string          `db:"name" json:"name"`
	ActivityID   sql.NullInt64   `db:"activity_id" json:"-"`
	Guests       int             `db:"guests" json:"guests"`
	WhoPays      string          `db:"who_pays" json:"whoPays"`
	CurrencyCode sql.NullString  `db:"currency_code" json:"-"`
	FeeAmount    sql.NullFloat64 `db:"fee_amount" json:"-"`
	LocationText string          `db:"location_text" json:"locationText"`
	Description  string          `db:"description" json:"description"`
	StartsAt     time.Time       `db:"starts_at" json:"startsAt"`
	EndsAt       sql.NullTime    `db:"ends_at" json:"-"`
	MapURL       sql.NullString  `db:"map_url" json:"-"`
	Status       MeetupStatus    `db:"meetup_status" json:"status"`
	Lat          sql.NullFloat64 `db:"lat" json:"-"`
	Lng          sql.NullFloat64 `db:"lng" json:"-"`
	City         sql.NullString  `db:"city" json:"-"`
	State        sql.NullString  `db:"state" json:"-"`
	Country      sql.NullString  `db:"country" json:"-"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// MeetupResponse is the API shape for a meetup listing, with nullable
// columns unwrapped to pointers.
type MeetupResponse struct {
	ID           string     `json:"id"`
	HostID       string     `json:"hostId"`
	HostName     *string    `json:"hostName,omitempty"`
	HostAvatar   *string    `json:"hostAvatarUrl,omitempty"`
	Name         string     `json:"name"`
	ActivityID   *int64     `json:"activityId"`
	Guests       int        `json:"guests"`
	WhoPays      string     `json:"whoPays"`
	CurrencyCode *string    `json:"currencyCode"`
	FeeAmount    *float64   `json:"feeAmount"`
	LocationText string     `json:"locationText"`
	Description  string     `json:"description"`
	StartsAt     time.Time  `json:"startsAt"`
	EndsAt       *time.Time `json:"endsAt"`
	MapURL       *string    `json:"mapUrl"`
	City         *string    `json:"city"`
	State        *string    `json:"state"`
	Country      *string    `json:"country"`
	AcceptedCount int       `json:"acceptedCount"`
}

// MeetupRow carries a meetup plus the aggregates the list endpoints need.
type MeetupRow struct {
	Meetup
	HostName      sql.NullString `db:"host_name"`
	HostAvatar    sql.NullString `db:"host_avatar_url"`
	AcceptedCount int            `db:"accepted_count"`
}

// JoinRequest is one row of meetup_requests.
type JoinRequest struct {
	ID        string         `db:"id" json:"id"`
	MeetupID  string         `db:"meetup_id" json:"meetupId"`
	UserID    string         `db:"user_id" json:"userId"`
	Status    RequestStatus  `db:"status" json:"status"`
	Message   sql.NullString `db:"message" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// RequestRow is a join request joined with its meetup, for the sent and
// received listings.
type RequestRow struct {
	JoinRequest
	MeetupName   string    `db:"meetup_name"`
	HostID       string    `db:"host_id"`
	StartsAt     time.Time `db:"starts_at"`
}

// Attendee is one accepted participant.
type Attendee struct {
	ID         string         `db:"id" json:"id"`
	MeetupID   string         `db:"meetup_id" json:"meetupId"`
	UserID     string         `db:"user_id" json:"userId"`
	ChatRoomID sql.NullString `db:"chat_room_id" json:"-"`
	CreatedAt  time.Time      `db:"created_at" json:"joinedAt"`
}

// CreateMeetupRequest is the payload for creating a listing.
type CreateMeetupRequest struct {
	Name         string   `json:"name" validate:"required,min=10,max=35"`
	ActivityID   *int64   `json:"activityId" validate:"omitempty,gt=0"`
	Guests       int      `json:"guests" validate:"required,min=1,max=7"`
	WhoPays      string   `json:"whoPays" validate:"required,oneof=host guest split"`
	CurrencyCode *string  `json:"currencyCode" validate:"omitempty,len=3"`
	FeeAmount    *float64 `json:"feeAmount" validate:"omitempty,gte=0"`
	LocationText string   `json:"locationText" validate:"required,max=100"`
	Description  string   `json:"description" validate:"required,min=35,max=150"`
	StartsAt     time.Time `json:"startsAt" validate:"required"`
	EndsAt       *time.Time `json:"endsAt"`
	MapURL       *string  `json:"mapUrl" validate:"omitempty,url"`
	Lat          *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng          *float64 `json:"lng" validate:"omitempty,longitude"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	Country      *string  `json:"country"`
}

// UpdateMeetupRequest is a partial update; nil fields are left untouched.
type UpdateMeetupRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=10,max=35"`
	Guests       *int       `json:"guests" validate:"omitempty,min=1,max=7"`
	WhoPays      *string    `json:"whoPays" validate:"omitempty,oneof=host guest split"`
	LocationText *string    `json:"locationText" validate:"omitempty,max=100"`
	Description  *string    `json:"description" validate:"omitempty,min=35,max=150"`
	StartsAt     *time.Time `json:"startsAt"`
	EndsAt       *time.Time `json:"endsAt"`
	MapURL       *string    `json:"mapUrl" validate:"omitempty,url"`
}

// JoinMeetupRequest is the payload for requesting to join.
type JoinMeetupRequest struct {
	Message *string `json:"message" validate:"omitempty,max=500"`
}

// toResponse unwraps nullable columns for the API.
func (r MeetupRow) toResponse() MeetupResponse {
	resp := MeetupResponse{
		ID:            r.ID,
		HostID:        r.HostID,
		Name:          r.Name,
		Guests:        r.Guests,
		WhoPays:       r.WhoPays,
		LocationText:  r.LocationText,
		Description:   r.Description,
		StartsAt:      r.StartsAt,
		AcceptedCount: r.AcceptedCount,
	}
	if r.HostName.Valid {
		resp.HostName = &r.HostName.String
	}
	if r.HostAvatar.Valid {
		resp.HostAvatar = &r.HostAvatar.String
	}
	if r.ActivityID.Valid {
		resp.ActivityID = &r.ActivityID.Int64
	}
	if r.CurrencyCode.Valid {
		resp.CurrencyCode = &r.CurrencyCode.String
	}
	if r.FeeAmount.Valid {
		resp.FeeAmount = &r.FeeAmount.Float64
	}
	if r.EndsAt.Valid {
		resp.EndsAt = &r.EndsAt.Time
	}
	if r.MapURL.Valid {
		resp.MapURL = &r.MapURL.String
	}
	if r.City.Valid {
		resp.City = &r.City.String
	}
	if r.State.Valid {
		resp.State = &r.State.String
	}
	if r.Country.Valid {
		resp.Country = &r.Country.String
	}
	return resp
}
