// internal/people/models.go

package people

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrLocationRequired = errors.New("viewer has no stored location and none was supplied")
	ErrInvalidFilter    = errors.New("invalid filter combination")
)

// Gender is the closed set accepted at the API boundary. The underlying
// column is free-form text; unknown values are rejected during parsing.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender normalizes a raw gender string to the closed enum.
func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s), true
	}
	return "", false
}

// UserState is the account approval lifecycle.
type UserState string

const (
	StateApplicant    UserState = "applicant"
	StateApprovedFree UserState = "approved_free"
	StateApprovedPaid UserState = "approved_paid"
	StateDisapproved  UserState = "disapproved"
	StateDeactivated  UserState = "deactivated"
	StateBanned       UserState = "banned"
	StateShadowBanned UserState = "shadow_banned"
)

// DiscoverableStates are the only states eligible for the people feed.
var DiscoverableStates = []UserState{StateApprovedFree, StateApprovedPaid}

// Center is a geographic point in plain degrees.
type Center struct {
	Lat float64
	Lng float64
}

// CandidateRow is one profile row coming back from the proximity query.
// DistanceKm is annotated in-process after scanning.
type CandidateRow struct {
	ID         string         `db:"id"`
	Name       sql.NullString `db:"name"`
	Gender     sql.NullString `db:"gender"`
	City       sql.NullString `db:"city"`
	State      sql.NullString `db:"state"`
	Country    sql.NullString `db:"country"`
	DOB        sql.NullTime   `db:"dob"`
	Bio        sql.NullString `db:"bio"`
	ApprovalAt sql.NullTime   `db:"approval_at"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`
	Lat        float64        `db:"lat"`
	Lng        float64        `db:"lng"`
	AvatarURL  sql.NullString `db:"avatar_url"`

	DistanceKm float64 `db:"-"`
}

// Person is the public response shape. Coordinates and distance are
// deliberately not exposed.
type Person struct {
	ID         string  `json:"id"`
	AvatarURL  *string `json:"avatarUrl"`
	Name       *string `json:"name"`
	Age        *int    `json:"age"`
	BioSnippet *string `json:"bioSnippet"`
}

// bioSnippetLen is how many characters of the biography are exposed.
const bioSnippetLen = 100

// deriveAge computes whole years between dob and now (last-birthday rule).
func deriveAge(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	// Not yet had the birthday this year
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
