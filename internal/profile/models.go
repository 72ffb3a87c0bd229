// internal/profile/models.go

package profile

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrSelfBlock        = errors.New("you cannot block yourself")
	ErrUserNotFound     = errors.New("user not found")
	ErrUploadTooLarge   = errors.New("image exceeds the maximum upload size")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// Location is the user's single stored position.
type Location struct {
	UserID             string         `db:"user_id" json:"-"`
	Lat                float64        `db:"lat" json:"lat"`
	Lng                float64        `db:"lng" json:"lng"`
	ClosestAirportCode sql.NullString `db:"closest_airport_code" json:"-"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// LocationResponse unwraps the nullable airport code.
type LocationResponse struct {
	Lat                float64   `json:"lat"`
	Lng                float64   `json:"lng"`
	ClosestAirportCode *string   `json:"closestAirportCode"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (l Location) toResponse() LocationResponse {
	resp := LocationResponse{Lat: l.Lat, Lng: l.Lng, UpdatedAt: l.UpdatedAt}
	if l.ClosestAirportCode.Valid {
		resp.ClosestAirportCode = &l.ClosestAirportCode.String
	}
	return resp
}

// UpsertLocationRequest sets or replaces the stored position.
type UpsertLocationRequest struct {
	Lat                float64 `json:"lat" validate:"required,latitude"`
	Lng                float64 `json:"lng" validate:"required,longitude"`
	ClosestAirportCode *string `json:"closestAirportCode" validate:"omitempty,len=3"`
}

// BlockedUser is one row of the block list.
type BlockedUser struct {
	UserID        string    `db:"user_id" json:"-"`
	BlockedUserID string    `db:"blocked_user_id" json:"userId"`
	CreatedAt     time.Time `db:"created_at" json:"blockedAt"`
}

// Interest is one selectable interest.
type Interest struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// UserInterest ties an interest to a user with a display position.
type UserInterest struct {
	UserID     string `db:"user_id" json:"-"`
	InterestID int    `db:"interest_id" json:"interestId"`
	Position   int    `db:"position" json:"position"`
}

// ReplaceInterestsRequest replaces the full ordered interest list.
type ReplaceInterestsRequest struct {
	InterestIDs []int `json:"interestIds" validate:"required,max=10,dive,gt=0"`
}

// Photo is one row of user_photos.
type Photo struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"-"`
	ImageType    string         `db:"image_type" json:"imageType"`
	OriginalURL  string         `db:"original_url" json:"originalUrl"`
	OptimizedURL sql.NullString `db:"optimized_url" json:"-"`
	Position     int            `db:"position" json:"position"`
	IsActive     bool           `db:"is_active" json:"isActive"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
}
