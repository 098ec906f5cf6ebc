package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventshare/internal/domain"
)

type userFixture struct {
	svc         domain.UserService
	users       *fakeUserRepo
	creds       *fakeCredentialRepo
	events      *fakeEventRepo
	memberships *fakeMembershipRepo
	photos      *fakePhotoRepo
	blobs       *fakeBlobStore
}

func newUserFixture() *userFixture {
	creds := newFakeCredentialRepo()
	users := newFakeUserRepo(creds)
	memberships := newFakeMembershipRepo()
	photos := newFakePhotoRepo()
	events := newFakeEventRepo(memberships, photos)
	blobs := newFakeBlobStore()
	return &userFixture{
		svc:         NewUserService(users, creds, events, photos, blobs, fakeHasher{}, testLogger()),
		users:       users,
		creds:       creds,
		events:      events,
		memberships: memberships,
		photos:      photos,
		blobs:       blobs,
	}
}

func (f *userFixture) seedUser(t *testing.T, id, email string) *domain.User {
	t.Helper()
	now := time.Now()
	user := domain.NewUser(id, email, "Name "+id, now, now)
	require.NoError(t, f.users.CreateWithCredential(context.Background(), user, "hashed:oldpass", "rt-"+id))
	return user
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates name and normalizes email", func(t *testing.T) {
		f := newUserFixture()
		f.seedUser(t, "u-1", "old@example.com")

		name := "  New Name  "
		email := "New@Example.COM"
		user, err := f.svc.UpdateProfile(ctx, "u-1", &name, &email)
		require.NoError(t, err)
		assert.Equal(t, "New Name", user.Name)
		assert.Equal(t, "new@example.com", user.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newUserFixture()
		f.seedUser(t, "u-1", "old@example.com")

		bad := "nope"
		_, err := f.svc.UpdateProfile(ctx, "u-1", nil, &bad)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		f := newUserFixture()
		f.seedUser(t, "u-1", "one@example.com")
		f.seedUser(t, "u-2", "two@example.com")

		taken := "two@example.com"
		_, err := f.svc.UpdateProfile(ctx, "u-1", nil, &taken)
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture()
		name := "X"
		_, err := f.svc.UpdateProfile(ctx, "ghost", &name, nil)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newUserFixture()
		f.seedUser(t, "u-1", "a@example.com")

		require.NoError(t, f.svc.ChangePassword(ctx, "u-1", "oldpass", "newpassword"))
		cred, err := f.creds.GetByUserID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "hashed:newpassword", cred.PasswordHash)
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newUserFixture()
		f.seedUser(t, "u-1", "a@example.com")

		err := f.svc.ChangePassword(ctx, "u-1", "wrong", "newpassword")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("new password too short", func(t *testing.T) {
		f := newUserFixture()
		f.seedUser(t, "u-1", "a@example.com")

		err := f.svc.ChangePassword(ctx, "u-1", "oldpass", "tiny")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestUserService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("owned events cascade, other memberships and uploads go too", func(t *testing.T) {
		f := newUserFixture()
		f.seedUser(t, "u-1", "a@example.com")

		// An event u-1 created, with a photo from another member.
		owned := &domain.Event{Title: "Mine", CreatorID: "u-1", InvitationToken: "aaaa"}
		require.NoError(t, f.events.CreateWithOwner(ctx, owned))
		_, err := f.memberships.Grant(ctx, owned.ID, "other", domain.AccessContributor)
		require.NoError(t, err)
		require.NoError(t, f.photos.Create(ctx, &domain.Photo{
			EventID: owned.ID, UploaderID: "other", BlobURL: "https://blobs.test/owned-other.jpg",
		}))

		// Someone else's event where u-1 is a member with an upload.
		foreign := &domain.Event{Title: "Theirs", CreatorID: "other", InvitationToken: "bbbb"}
		require.NoError(t, f.events.CreateWithOwner(ctx, foreign))
		_, err = f.memberships.Grant(ctx, foreign.ID, "u-1", domain.AccessContributor)
		require.NoError(t, err)
		require.NoError(t, f.photos.Create(ctx, &domain.Photo{
			EventID: foreign.ID, UploaderID: "u-1", BlobURL: "https://blobs.test/foreign-mine.jpg",
		}))

		require.NoError(t, f.svc.DeleteAccount(ctx, "u-1"))

		// The owned event is gone with all its rows.
		_, err = f.events.GetByID(ctx, owned.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)

		// The foreign event survives, its creator's membership intact.
		_, err = f.events.GetByID(ctx, foreign.ID)
		require.NoError(t, err)
		level, err := f.memberships.GetLevel(ctx, foreign.ID, "other")
		require.NoError(t, err)
		assert.Equal(t, domain.AccessAdmin, level)

		// u-1's blobs were deleted, and the user row is gone.
		assert.Contains(t, f.blobs.deleted, "https://blobs.test/owned-other.jpg")
		assert.Contains(t, f.blobs.deleted, "https://blobs.test/foreign-mine.jpg")
		_, err = f.users.GetByID(ctx, "u-1")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture()
		err := f.svc.DeleteAccount(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
