package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/backend/internal/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:      "test-access-secret-not-for-prod",
		RefreshSecret:     "test-refresh-secret-not-for-prod",
		AccessExpiration:  15 * time.Minute,
		RefreshExpiration: 24 * time.Hour,
	}
}

func newTestAuthService(users *fakeUserRepo, store *fakeStorage) AuthService {
	return NewAuthService(users, store, testJWTConfig(), testLogger())
}

func avatarUpload() FileUpload {
	return FileUpload{
		Reader:      strings.NewReader("png bytes"),
		Filename:    "avatar.png",
		ContentType: "image/png",
		Size:        9,
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	users := newFakeUserRepo()
	store := newFakeStorage()
	svc := newTestAuthService(users, store)

	user, err := svc.Register(context.Background(), "GOPHER", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)

	assert.False(t, user.ID.IsZero())
	assert.Equal(t, "gopher", user.Username, "usernames are stored lowercase")
	assert.NotEmpty(t, user.Avatar.URL)
	assert.Empty(t, user.PasswordHash, "the hash must never leave the service")
	assert.Len(t, store.objects, 1)
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	_, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "gopher", "other@example.com", "Other", "secret123", avatarUpload(), nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterFailureRemovesUploadedBlobs(t *testing.T) {
	users := newFakeUserRepo()
	users.createErr = assertableErr("db down")
	store := newFakeStorage()
	svc := newTestAuthService(users, store)

	_, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.Error(t, err)

	assert.Empty(t, store.objects, "a failed registration must not leave blobs behind")
	assert.Len(t, store.deleted, 1)
}

func TestRegisterMissingAvatar(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeStorage())

	_, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", FileUpload{}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	_, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "gopher", "", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeStorage())

	_, _, err := svc.Login(context.Background(), "nobody", "", "secret123")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	_, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)

	user, pair, err := svc.Login(context.Background(), "gopher", "", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.RefreshToken)

	_, _, err = svc.Login(context.Background(), "", "gopher@example.com", "secret123")
	assert.NoError(t, err)
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	user, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "gopher", "", "secret123")
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "gopher", claims.Username)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeStorage())

	_, err := svc.ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	_, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)
	_, pair, err := svc.Login(context.Background(), "gopher", "", "secret123")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)
}

func TestRefreshRejectsReplayedToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	_, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)
	_, first, err := svc.Login(context.Background(), "gopher", "", "secret123")
	require.NoError(t, err)

	// A second login stores a new refresh token, so the first one is no
	// longer the stored copy.
	_, _, err = svc.Login(context.Background(), "gopher", "", "secret123")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogoutClearsStoredRefreshToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	user, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)
	_, pair, err := svc.Login(context.Background(), "gopher", "", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	user, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "new-secret-99")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChangePasswordThenLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeStorage())

	user, err := svc.Register(context.Background(), "gopher", "gopher@example.com", "Go Gopher", "secret123", avatarUpload(), nil)
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "secret123", "new-secret-99"))

	_, _, err = svc.Login(context.Background(), "gopher", "", "secret123")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = svc.Login(context.Background(), "gopher", "", "new-secret-99")
	assert.NoError(t, err)
}

// assertableErr is a trivial error type for failure injection.
type assertableErr string

func (e assertableErr) Error() string { return string(e) }
