// cmd/api/migrations.go
// Schema bootstrap, applied idempotently on startup

package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT,
		gender TEXT,
		dob DATE,
		bio TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		user_state TEXT NOT NULL DEFAULT 'applicant'
			CHECK (user_state IN ('applicant', 'approved_free', 'approved_paid', 'disapproved', 'deactivated', 'banned', 'shadow_banned')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS user_location (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		closest_airport_code TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_user_location_lat_lng ON user_location (lat, lng)`,

	`CREATE TABLE IF NOT EXISTS blocked_user (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		blocked_user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, blocked_user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS interests (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS user_interests (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		interest_id INTEGER NOT NULL REFERENCES interests(id) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, interest_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_photos (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		image_type TEXT NOT NULL,
		original_url TEXT NOT NULL,
		optimized_url TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_user_photos_avatar
		ON user_photos (user_id, position) WHERE image_type = 'avatar' AND is_active`,

	`CREATE TABLE IF NOT EXISTS admin_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		action_type TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_admin_logs_user_action ON admin_logs (user_id, action_type, created_at)`,

	`CREATE TABLE IF NOT EXISTS meetups (
		id UUID PRIMARY KEY,
		host_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		activity_id INTEGER,
		guests INTEGER NOT NULL CHECK (guests BETWEEN 1 AND 7),
		who_pays TEXT NOT NULL,
		currency_code TEXT,
		fee_amount NUMERIC(12, 2),
		location_text TEXT NOT NULL,
		description TEXT NOT NULL,
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ,
		map_url TEXT,
		meetup_status TEXT NOT NULL DEFAULT 'active' CHECK (meetup_status IN ('active', 'deleted')),
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		city TEXT,
		state TEXT,
		country TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_meetups_feed ON meetups (meetup_status, starts_at)`,

	`CREATE TABLE IF NOT EXISTS meetup_requests (
		id UUID PRIMARY KEY,
		meetup_id UUID NOT NULL REFERENCES meetups(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'declined')),
		message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (meetup_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_meetup_requests_quota ON meetup_requests (user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS meetup_attendees (
		id UUID PRIMARY KEY,
		meetup_id UUID NOT NULL REFERENCES meetups(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		chat_room_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (meetup_id, user_id)
	)`,
}

func runMigrations(db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
