package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
)

func newUserFixture() (UserService, *fakeUserRepo, *fakeStorage) {
	users := newFakeUserRepo()
	store := newFakeStorage()
	return NewUserService(users, store, testLogger()), users, store
}

func imageUpload(name string) FileUpload {
	return FileUpload{
		Reader:      strings.NewReader("jpg bytes"),
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        9,
	}
}

func TestGetCurrentUnknownUser(t *testing.T) {
	svc, _, _ := newUserFixture()

	_, err := svc.GetCurrent(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAccountRequiresAField(t *testing.T) {
	svc, _, _ := newUserFixture()

	_, err := svc.UpdateAccount(context.Background(), primitive.NewObjectID(), "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateAccount(t *testing.T) {
	svc, users, _ := newUserFixture()
	user := users.add(&domain.User{Username: "gopher", FullName: "Old Name", Email: "old@example.com"})

	updated, err := svc.UpdateAccount(context.Background(), user.ID, "New Name", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "new@example.com", updated.Email)
}

func TestUpdateAvatarReplacesOldBlob(t *testing.T) {
	svc, users, store := newUserFixture()
	user := users.add(&domain.User{
		Username: "gopher",
		Avatar:   domain.MediaRef{URL: "https://cdn.test/avatars/old", ObjectKey: "avatars/old"},
	})

	updated, err := svc.UpdateAvatar(context.Background(), user.ID, imageUpload("new.jpg"))
	require.NoError(t, err)

	assert.NotEqual(t, "avatars/old", updated.Avatar.ObjectKey)
	assert.NotEmpty(t, updated.Avatar.URL)
	assert.Contains(t, store.deleted, "avatars/old", "the old avatar blob is removed after the record update")
}

func TestUpdateAvatarFirstTimeDeletesNothing(t *testing.T) {
	svc, users, store := newUserFixture()
	user := users.add(&domain.User{Username: "gopher"})

	_, err := svc.UpdateCoverImage(context.Background(), user.ID, imageUpload("cover.jpg"))
	require.NoError(t, err)
	assert.Empty(t, store.deleted)
}

func TestUpdateAvatarMissingFile(t *testing.T) {
	svc, users, _ := newUserFixture()
	user := users.add(&domain.User{Username: "gopher"})

	_, err := svc.UpdateAvatar(context.Background(), user.ID, FileUpload{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetChannelProfile(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.add(&domain.User{Username: "channel", FullName: "The Channel"})

	profile, err := svc.GetChannelProfile(context.Background(), "channel", primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, "channel", profile.Username)

	_, err = svc.GetChannelProfile(context.Background(), "missing", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetChannelProfile(context.Background(), "", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetChannelProfileMixedCaseUsername(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.add(&domain.User{Username: "gopherdev", FullName: "Gopher Dev"})

	// Stored usernames are lowercase; the lookup must match regardless of
	// how the caller cased the path parameter.
	profile, err := svc.GetChannelProfile(context.Background(), "GopherDev", primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, "gopherdev", profile.Username)
}

func TestGetWatchHistory(t *testing.T) {
	svc, users, _ := newUserFixture()
	user := users.add(&domain.User{Username: "gopher"})
	videoID := primitive.NewObjectID()
	require.NoError(t, users.AppendWatchHistory(context.Background(), user.ID, videoID))

	history, err := svc.GetWatchHistory(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, videoID, history[0].ID)
}
