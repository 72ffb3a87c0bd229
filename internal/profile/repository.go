// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetLocation(ctx context.Context, userID string) (*Location, error)
	UpsertLocation(ctx context.Context, loc *Location) error

	Block(ctx context.Context, userID, blockedUserID string) error
	Unblock(ctx context.Context, userID, blockedUserID string) error
	ListBlocked(ctx context.Context, userID string) ([]BlockedUser, error)

	ReplaceInterests(ctx context.Context, userID string, interestIDs []int) error
	ListInterests(ctx context.Context, userID string) ([]Interest, error)

	SetAvatar(ctx context.Context, photo *Photo) error
	UserExists(ctx context.Context, userID string) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetLocation(ctx context.Context, userID string) (*Location, error) {
	var loc Location
	err := r.db.GetContext(ctx, &loc,
		`SELECT user_id, lat, lng, closest_airport_code, updated_at FROM user_location WHERE user_id = $1`,
		userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &loc, nil
}

func (r *postgresRepository) UpsertLocation(ctx context.Context, loc *Location) error {
	query := `
		INSERT INTO user_location (user_id, lat, lng, closest_airport_code, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			closest_airport_code = EXCLUDED.closest_airport_code,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		loc.UserID, loc.Lat, loc.Lng, loc.ClosestAirportCode, loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}

func (r *postgresRepository) Block(ctx context.Context, userID, blockedUserID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocked_user (user_id, blocked_user_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, blocked_user_id) DO NOTHING`,
		userID, blockedUserID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}
	return nil
}

func (r *postgresRepository) Unblock(ctx context.Context, userID, blockedUserID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM blocked_user WHERE user_id = $1 AND blocked_user_id = $2`,
		userID, blockedUserID)
	if err != nil {
		return fmt.Errorf("failed to unblock user: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListBlocked(ctx context.Context, userID string) ([]BlockedUser, error) {
	var out []BlockedUser
	err := r.db.SelectContext(ctx, &out,
		`SELECT user_id, blocked_user_id, created_at FROM blocked_user
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked users: %w", err)
	}
	return out, nil
}

// ReplaceInterests swaps the full ordered interest list in one transaction
// so a crash never leaves a half-written selection.
func (r *postgresRepository) ReplaceInterests(ctx context.Context, userID string, interestIDs []int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear interests: %w", err)
	}

	for pos, id := range interestIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_interests (user_id, interest_id, position) VALUES ($1, $2, $3)`,
			userID, id, pos); err != nil {
			return fmt.Errorf("failed to insert interest %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) ListInterests(ctx context.Context, userID string) ([]Interest, error) {
	var out []Interest
	err := r.db.SelectContext(ctx, &out,
		`SELECT i.id, i.name FROM interests i
		 INNER JOIN user_interests ui ON ui.interest_id = i.id
		 WHERE ui.user_id = $1
		 ORDER BY ui.position ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	return out, nil
}

// SetAvatar deactivates previous avatars and inserts the new one at the
// front, in one transaction.
func (r *postgresRepository) SetAvatar(ctx context.Context, photo *Photo) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_photos SET is_active = false WHERE user_id = $1 AND image_type = 'avatar'`,
		photo.UserID); err != nil {
		return fmt.Errorf("failed to retire previous avatar: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_photos (id, user_id, image_type, original_url, optimized_url, position, is_active, created_at)
		 VALUES ($1, $2, 'avatar', $3, $4, 0, true, $5)`,
		photo.ID, photo.UserID, photo.OriginalURL, photo.OptimizedURL, photo.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert avatar: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}
