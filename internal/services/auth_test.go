package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventshare/internal/domain"
)

func newAuthFixture() (domain.AuthService, *fakeUserRepo, *fakeCredentialRepo, *fakeTokenManager) {
	creds := newFakeCredentialRepo()
	users := newFakeUserRepo(creds)
	tokens := &fakeTokenManager{}
	svc := NewAuthService(users, creds, tokens, fakeHasher{})
	return svc, users, creds, tokens
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, users, creds, _ := newAuthFixture()

		result, err := svc.SignUp(ctx, "Alice", "Alice@Example.COM", "supersecret")
		require.NoError(t, err)
		require.NotNil(t, result.User)
		assert.NotEmpty(t, result.User.ID)
		assert.Equal(t, "alice@example.com", result.User.Email)
		assert.Equal(t, "Alice", result.User.Name)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)

		stored, ok := users.byID[result.User.ID]
		require.True(t, ok)
		assert.Equal(t, "alice@example.com", stored.Email)

		cred, err := creds.GetByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "hashed:supersecret", cred.PasswordHash)
		require.NotNil(t, cred.RefreshToken)
		assert.Equal(t, result.RefreshToken, *cred.RefreshToken)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		_, err := svc.SignUp(ctx, "Alice", "not-an-email", "supersecret")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("short password", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		_, err := svc.SignUp(ctx, "Alice", "alice@example.com", "short")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		_, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)
		_, err = svc.SignUp(ctx, "Alice Two", "alice@example.com", "supersecret")
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("repo failure leaves no user behind", func(t *testing.T) {
		svc, users, creds, _ := newAuthFixture()
		users.createErr = errors.New("db down")
		_, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.Error(t, err)
		assert.Empty(t, users.byID)
		assert.Empty(t, creds.byUserID)
	})
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success rotates refresh token", func(t *testing.T) {
		svc, _, creds, _ := newAuthFixture()
		signedUp, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)

		result, err := svc.SignIn(ctx, "ALICE@example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, signedUp.User.ID, result.User.ID)
		assert.NotEqual(t, signedUp.RefreshToken, result.RefreshToken)

		cred, err := creds.GetByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		require.NotNil(t, cred.RefreshToken)
		assert.Equal(t, result.RefreshToken, *cred.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		_, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)
		_, err = svc.SignIn(ctx, "alice@example.com", "wrongpass")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		_, err := svc.SignIn(ctx, "nobody@example.com", "whatever")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues new pair and stores it", func(t *testing.T) {
		svc, _, creds, _ := newAuthFixture()
		signedUp, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)

		pair, err := svc.Refresh(ctx, signedUp.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, signedUp.RefreshToken, pair.RefreshToken)

		cred, err := creds.GetByUserID(ctx, signedUp.User.ID)
		require.NoError(t, err)
		require.NotNil(t, cred.RefreshToken)
		assert.Equal(t, pair.RefreshToken, *cred.RefreshToken)
	})

	t.Run("rotated-out token is stale", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		signedUp, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)

		first, err := svc.Refresh(ctx, signedUp.RefreshToken)
		require.NoError(t, err)

		// The original token was rotated out by the first refresh.
		_, err = svc.Refresh(ctx, signedUp.RefreshToken)
		require.ErrorIs(t, err, domain.ErrRefreshTokenStale)

		// The current token still works.
		_, err = svc.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("refresh after logout is stale", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		signedUp, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, signedUp.User.ID))

		_, err = svc.Refresh(ctx, signedUp.RefreshToken)
		require.ErrorIs(t, err, domain.ErrRefreshTokenStale)
	})

	t.Run("garbage token fails verification", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		_, err := svc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("token for deleted user is stale", func(t *testing.T) {
		svc, users, _, _ := newAuthFixture()
		signedUp, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)

		require.NoError(t, users.DeleteCascade(ctx, signedUp.User.ID))

		_, err = svc.Refresh(ctx, signedUp.RefreshToken)
		require.ErrorIs(t, err, domain.ErrRefreshTokenStale)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears the stored refresh token", func(t *testing.T) {
		svc, _, creds, _ := newAuthFixture()
		signedUp, err := svc.SignUp(ctx, "Alice", "alice@example.com", "supersecret")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, signedUp.User.ID))

		cred, err := creds.GetByUserID(ctx, signedUp.User.ID)
		require.NoError(t, err)
		assert.Nil(t, cred.RefreshToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture()
		err := svc.Logout(ctx, "no-such-user")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
