package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/client/clienttest"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/repotest"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/cryptox"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newAuth(t *testing.T, silent bool) (*AuthService, *clienttest.Remote, credentials.Repository) {
	t.Helper()
	remote := clienttest.NewRemote()
	creds := credentials.NewSQLiteRepository(repotest.NewDB(t))

	var sealer *cryptox.Sealer
	if silent {
		var err error
		sealer, err = cryptox.LoadOrCreateSealer(filepath.Join(t.TempDir(), "device.key"))
		require.NoError(t, err)
	}
	return NewAuthService(remote, creds, sealer, clock.Fake(epoch), nil), remote, creds
}

func TestCredentialRoundTrip(t *testing.T) {
	a, _, _ := newAuth(t, false)
	ctx := context.Background()

	require.NoError(t, a.CacheCredential(ctx, "u1", "Alice@Example.com", "s3cret"))

	c, err := a.VerifyOffline(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.False(t, c.HasSealedSecret())

	_, err = a.VerifyOffline(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, client.ErrLocalDataNotAvailable)

	_, err = a.VerifyOffline(ctx, "bob@example.com", "s3cret")
	assert.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestCacheCredential_NoPlaintextAtRest(t *testing.T) {
	a, _, creds := newAuth(t, true)
	ctx := context.Background()

	require.NoError(t, a.CacheCredential(ctx, "u1", "alice@example.com", "s3cret"))

	c, err := creds.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, c.HasSealedSecret())
	assert.NotContains(t, string(c.SealedSecret), "s3cret")
	assert.NotContains(t, string(c.Verifier), "s3cret")
	assert.Equal(t, epoch, c.LastLoginAt)
}

func TestOnlineLogin_CachesCredential(t *testing.T) {
	a, remote, _ := newAuth(t, false)
	ctx := context.Background()
	id := remote.AddAccount("alice@example.com", "s3cret")

	s, err := a.OnlineLogin(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, id, s.UserID)
	assert.False(t, s.Offline)
	assert.NotEmpty(t, s.AccessToken)

	remote.SetDown(true)
	c, err := a.VerifyOffline(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, id, c.UserID)
}

func TestOnlineLogin_WrongPassword(t *testing.T) {
	a, remote, _ := newAuth(t, false)
	remote.AddAccount("alice@example.com", "s3cret")

	_, err := a.OnlineLogin(context.Background(), "alice@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestOnlineLogin_Unavailable(t *testing.T) {
	a, remote, _ := newAuth(t, false)
	remote.SetDown(true)

	_, err := a.OnlineLogin(context.Background(), "alice@example.com", "s3cret")
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestRegister_SeedsCache(t *testing.T) {
	a, _, _ := newAuth(t, false)
	ctx := context.Background()

	s, err := a.Register(ctx, "carol@example.com", "pw")
	require.NoError(t, err)

	c, err := a.VerifyOffline(ctx, "carol@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, s.UserID, c.UserID)

	_, err = a.Register(ctx, "carol@example.com", "pw")
	assert.ErrorIs(t, err, client.ErrConflict)
}

func TestSilentReauth(t *testing.T) {
	a, remote, _ := newAuth(t, true)
	ctx := context.Background()
	id := remote.AddAccount("alice@example.com", "s3cret")
	require.NoError(t, a.CacheCredential(ctx, id, "alice@example.com", "s3cret"))

	s, err := a.SilentReauth(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, s.UserID)
	assert.False(t, s.Offline)
	assert.Equal(t, 1, remote.SignIns)
}

func TestSilentReauth_Disabled(t *testing.T) {
	a, remote, _ := newAuth(t, false)
	ctx := context.Background()
	id := remote.AddAccount("alice@example.com", "s3cret")
	require.NoError(t, a.CacheCredential(ctx, id, "alice@example.com", "s3cret"))

	_, err := a.SilentReauth(ctx, id)
	assert.ErrorIs(t, err, ErrSilentReauthUnavailable)
	assert.Zero(t, remote.SignIns)
}

func TestSilentReauth_UnknownUser(t *testing.T) {
	a, _, _ := newAuth(t, true)

	_, err := a.SilentReauth(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrSilentReauthUnavailable)
}

func TestSilentReauth_StaleSecretIsDropped(t *testing.T) {
	a, remote, creds := newAuth(t, true)
	ctx := context.Background()
	id := remote.AddAccount("alice@example.com", "old")
	require.NoError(t, a.CacheCredential(ctx, id, "alice@example.com", "old"))
	remote.SetPassword("alice@example.com", "new")

	_, err := a.SilentReauth(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	c, err := creds.GetByUserID(ctx, id)
	require.NoError(t, err)
	assert.False(t, c.HasSealedSecret())

	_, err = a.VerifyOffline(ctx, "alice@example.com", "old")
	assert.NoError(t, err, "verifier survives")
}

func TestForgetSecret(t *testing.T) {
	a, _, creds := newAuth(t, true)
	ctx := context.Background()
	require.NoError(t, a.CacheCredential(ctx, "u1", "alice@example.com", "s3cret"))

	require.NoError(t, a.ForgetSecret(ctx, "u1"))
	c, err := creds.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, c.HasSealedSecret())

	assert.NoError(t, a.ForgetSecret(ctx, "missing"))
}
