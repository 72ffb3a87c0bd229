package profile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	locations map[string]*Location
	blocked   map[string][]string
	interests map[string][]int
	avatars   []*Photo
	users     map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		locations: map[string]*Location{},
		blocked:   map[string][]string{},
		interests: map[string][]int{},
		users:     map[string]bool{},
	}
}

func (f *fakeRepo) GetLocation(ctx context.Context, userID string) (*Location, error) {
	return f.locations[userID], nil
}

func (f *fakeRepo) UpsertLocation(ctx context.Context, loc *Location) error {
	f.locations[loc.UserID] = loc
	return nil
}

func (f *fakeRepo) Block(ctx context.Context, userID, blockedUserID string) error {
	f.blocked[userID] = append(f.blocked[userID], blockedUserID)
	return nil
}

func (f *fakeRepo) Unblock(ctx context.Context, userID, blockedUserID string) error {
	kept := f.blocked[userID][:0]
	for _, id := range f.blocked[userID] {
		if id != blockedUserID {
			kept = append(kept, id)
		}
	}
	f.blocked[userID] = kept
	return nil
}

func (f *fakeRepo) ListBlocked(ctx context.Context, userID string) ([]BlockedUser, error) {
	var out []BlockedUser
	for _, id := range f.blocked[userID] {
		out = append(out, BlockedUser{UserID: userID, BlockedUserID: id})
	}
	return out, nil
}

func (f *fakeRepo) ReplaceInterests(ctx context.Context, userID string, interestIDs []int) error {
	f.interests[userID] = interestIDs
	return nil
}

func (f *fakeRepo) ListInterests(ctx context.Context, userID string) ([]Interest, error) {
	var out []Interest
	for _, id := range f.interests[userID] {
		out = append(out, Interest{ID: id})
	}
	return out, nil
}

func (f *fakeRepo) SetAvatar(ctx context.Context, photo *Photo) error {
	f.avatars = append(f.avatars, photo)
	return nil
}

func (f *fakeRepo) UserExists(ctx context.Context, userID string) (bool, error) {
	return f.users[userID], nil
}

type fakeUploader struct{ lastContentType string }

func (f *fakeUploader) Upload(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	if _, ok := allowedImageTypes[contentType]; !ok {
		return "", ErrUnsupportedImage
	}
	f.lastContentType = contentType
	return "https://cdn.example.com/" + userID + ".jpg", nil
}

func TestBlock(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.users["other"] = true
	svc := NewService(repo, &fakeUploader{})

	t.Run("blocks an existing user", func(t *testing.T) {
		require.NoError(t, svc.Block(ctx, "me", "other"))
		assert.Equal(t, []string{"other"}, repo.blocked["me"])
	})

	t.Run("self block rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.Block(ctx, "me", "me"), ErrSelfBlock)
	})

	t.Run("unknown target rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.Block(ctx, "me", "ghost"), ErrUserNotFound)
	})
}

func TestReplaceInterests(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, &fakeUploader{})

	_, err := svc.ReplaceInterests(ctx, "me", ReplaceInterestsRequest{InterestIDs: []int{3, 1, 3, 2, 1}})
	require.NoError(t, err)

	// Duplicates collapse, first occurrence keeps its slot
	assert.Equal(t, []int{3, 1, 2}, repo.interests["me"])
}

func TestUpsertLocation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, &fakeUploader{})

	loc, err := svc.UpsertLocation(ctx, "me", UpsertLocationRequest{Lat: 12.9716, Lng: 77.5946})
	require.NoError(t, err)
	assert.Equal(t, 12.9716, loc.Lat)
	assert.Nil(t, loc.ClosestAirportCode)

	code := "BLR"
	loc, err = svc.UpsertLocation(ctx, "me", UpsertLocationRequest{Lat: 13.0, Lng: 77.6, ClosestAirportCode: &code})
	require.NoError(t, err)
	require.NotNil(t, loc.ClosestAirportCode)
	assert.Equal(t, "BLR", *loc.ClosestAirportCode)
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the photo row", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, &fakeUploader{})

		photo, err := svc.UploadAvatar(ctx, "me", "image/jpeg", []byte("fake-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "avatar", photo.ImageType)
		assert.True(t, photo.IsActive)
		require.Len(t, repo.avatars, 1)
	})

	t.Run("oversized upload rejected before hitting storage", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, &fakeUploader{})

		big := []byte(strings.Repeat("x", maxAvatarBytes+1))
		_, err := svc.UploadAvatar(ctx, "me", "image/jpeg", big)
		assert.ErrorIs(t, err, ErrUploadTooLarge)
		assert.Empty(t, repo.avatars)
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, &fakeUploader{})

		_, err := svc.UploadAvatar(ctx, "me", "image/gif", []byte("gif"))
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
}
