// internal/profile/service.go

package profile

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	GetLocation(ctx context.Context, userID string) (*LocationResponse, error)
	UpsertLocation(ctx context.Context, userID string, req UpsertLocationRequest) (*LocationResponse, error)

	Block(ctx context.Context, userID, targetID string) error
	Unblock(ctx context.Context, userID, targetID string) error
	ListBlocked(ctx context.Context, userID string) ([]BlockedUser, error)

	ReplaceInterests(ctx context.Context, userID string, req ReplaceInterestsRequest) ([]Interest, error)
	ListInterests(ctx context.Context, userID string) ([]Interest, error)

	UploadAvatar(ctx context.Context, userID, contentType string, data []byte) (*Photo, error)
}

type service struct {
	repo     Repository
	uploader Uploader
	now      func() time.Time
}

func NewService(repo Repository, uploader Uploader) Service {
	return &service{
		repo:     repo,
		uploader: uploader,
		now:      time.Now,
	}
}

func (s *service) GetLocation(ctx context.Context, userID string) (*LocationResponse, error) {
	loc, err := s.repo.GetLocation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}
	resp := loc.toResponse()
	return &resp, nil
}

func (s *service) UpsertLocation(ctx context.Context, userID string, req UpsertLocationRequest) (*LocationResponse, error) {
	loc := &Location{
		UserID:    userID,
		Lat:       req.Lat,
		Lng:       req.Lng,
		UpdatedAt: s.now().UTC(),
	}
	if req.ClosestAirportCode != nil {
		loc.ClosestAirportCode = sql.NullString{String: *req.ClosestAirportCode, Valid: true}
	}

	if err := s.repo.UpsertLocation(ctx, loc); err != nil {
		return nil, err
	}

	resp := loc.toResponse()
	return &resp, nil
}

func (s *service) Block(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return ErrSelfBlock
	}

	exists, err := s.repo.UserExists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	return s.repo.Block(ctx, userID, targetID)
}

func (s *service) Unblock(ctx context.Context, userID, targetID string) error {
	return s.repo.Unblock(ctx, userID, targetID)
}

func (s *service) ListBlocked(ctx context.Context, userID string) ([]BlockedUser, error) {
	return s.repo.ListBlocked(ctx, userID)
}

func (s *service) ReplaceInterests(ctx context.Context, userID string, req ReplaceInterestsRequest) ([]Interest, error) {
	// Dedupe while preserving order; position mirrors the submitted order
	seen := map[int]bool{}
	ids := make([]int, 0, len(req.InterestIDs))
	for _, id := range req.InterestIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if err := s.repo.ReplaceInterests(ctx, userID, ids); err != nil {
		return nil, err
	}
	return s.repo.ListInterests(ctx, userID)
}

func (s *service) ListInterests(ctx context.Context, userID string) ([]Interest, error) {
	return s.repo.ListInterests(ctx, userID)
}

func (s *service) UploadAvatar(ctx context.Context, userID, contentType string, data []byte) (*Photo, error) {
	if len(data) > maxAvatarBytes {
		return nil, ErrUploadTooLarge
	}

	url, err := s.uploader.Upload(ctx, userID, contentType, data)
	if err != nil {
		return nil, err
	}

	photo := &Photo{
		ID:          uuid.New().String(),
		UserID:      userID,
		ImageType:   "avatar",
		OriginalURL: url,
		Position:    0,
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.SetAvatar(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}
