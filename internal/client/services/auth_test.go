package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient serves numbered public keys and records what it was sent.
type fakeClient struct {
	keys     int
	access   string
	refresh  string
	expired  map[string]bool
	refreshE error

	signedIn  [3]string
	passwords [3]string
	signedOut bool
	withdrawn bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{expired: map[string]bool{}}
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) PublicKey(context.Context) (string, error) {
	f.keys++
	return "pk" + string(rune('0'+f.keys)), nil
}

func (f *fakeClient) SignIn(_ context.Context, pub, username, password string) (models.Tokens, error) {
	f.signedIn = [3]string{pub, username, password}
	if password != "enc(secret|"+pub+")" {
		return models.Tokens{}, &client.APIError{Status: 401, Code: common.CodeUnauthenticated}
	}
	f.access, f.refresh = "a1", "r1"
	return models.Tokens{AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (f *fakeClient) check(access string) error {
	if f.expired[access] {
		return &client.APIError{Status: 401, Code: common.CodeExpiredToken}
	}
	if access != f.access {
		return &client.APIError{Status: 401, Code: common.CodeUnauthenticated}
	}
	return nil
}

func (f *fakeClient) SignOut(_ context.Context, access string) error {
	if err := f.check(access); err != nil {
		return err
	}
	f.signedOut = true
	return nil
}

func (f *fakeClient) Info(_ context.Context, access string) (*models.Info, error) {
	if err := f.check(access); err != nil {
		return nil, err
	}
	return &models.Info{ID: "s-1", Username: "bob"}, nil
}

func (f *fakeClient) UpdateInfo(_ context.Context, access, pub, nickname, gender string) error {
	return f.check(access)
}

func (f *fakeClient) ChangePassword(_ context.Context, access, pub, origin, password string) error {
	if err := f.check(access); err != nil {
		return err
	}
	f.passwords = [3]string{pub, origin, password}
	return nil
}

func (f *fakeClient) Withdraw(_ context.Context, access string) error {
	if err := f.check(access); err != nil {
		return err
	}
	f.withdrawn = true
	return nil
}

func (f *fakeClient) Refresh(_ context.Context, refresh, access string) (string, error) {
	if f.refreshE != nil {
		return "", f.refreshE
	}
	if refresh != f.refresh || access != f.access {
		return "", &client.APIError{Status: 401, Code: common.CodeUnauthenticated}
	}
	f.access = access + "'"
	return f.access, nil
}

func newService(f *fakeClient) *AuthService {
	a := NewAuthService(f)
	a.encrypt = func(plain, pub string) (string, error) { return "enc(" + plain + "|" + pub + ")", nil }
	return a
}

func loggedIn(t *testing.T) (*AuthService, *fakeClient) {
	t.Helper()
	f := newFakeClient()
	a := newService(f)
	require.NoError(t, a.Login(context.Background(), "bob", "secret"))
	return a, f
}

func TestLogin(t *testing.T) {
	a, f := loggedIn(t)

	assert.True(t, a.IsLoggedIn())
	assert.Equal(t, "bob", a.Username())
	assert.Equal(t, [3]string{"pk1", "enc(bob|pk1)", "enc(secret|pk1)"}, f.signedIn)
}

func TestLogin_Rejected(t *testing.T) {
	a := newService(newFakeClient())

	err := a.Login(context.Background(), "bob", "wrong")
	assert.Equal(t, common.CodeUnauthenticated, client.CodeOf(err))
	assert.False(t, a.IsLoggedIn())
}

func TestNotLoggedIn(t *testing.T) {
	a := newService(newFakeClient())
	ctx := context.Background()

	_, err := a.Info(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, a.Refresh(ctx), ErrNotLoggedIn)
	assert.ErrorIs(t, a.Withdraw(ctx), ErrNotLoggedIn)
}

func TestChangePassword_FreshKeyPerCall(t *testing.T) {
	a, f := loggedIn(t)

	require.NoError(t, a.ChangePassword(context.Background(), "old", "new"))
	assert.Equal(t, [3]string{"pk2", "enc(old|pk2)", "enc(new|pk2)"}, f.passwords)
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	a, f := loggedIn(t)
	f.expired["a1"] = true

	info, err := a.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", info.Username)

	tokens, _ := a.session()
	assert.Equal(t, "a1'", tokens.AccessToken)
	assert.Equal(t, "r1", tokens.RefreshToken)
}

func TestRejectedRefreshEndsSession(t *testing.T) {
	a, f := loggedIn(t)
	f.refresh = "rotated-elsewhere"

	err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.False(t, a.IsLoggedIn())
}

func TestUnavailableRefreshKeepsSession(t *testing.T) {
	a, f := loggedIn(t)
	f.refreshE = client.ErrUnavailable

	err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.True(t, a.IsLoggedIn())
}

func TestLogout_AlwaysClears(t *testing.T) {
	a, f := loggedIn(t)
	require.NoError(t, a.Logout(context.Background()))
	assert.True(t, f.signedOut)
	assert.False(t, a.IsLoggedIn())

	a, f = loggedIn(t)
	f.access = "revoked"
	err := a.Logout(context.Background())
	assert.Equal(t, common.CodeUnauthenticated, client.CodeOf(err))
	assert.False(t, a.IsLoggedIn())
}

func TestWithdraw(t *testing.T) {
	a, f := loggedIn(t)

	require.NoError(t, a.Withdraw(context.Background()))
	assert.True(t, f.withdrawn)
	assert.False(t, a.IsLoggedIn())
}

func TestEncryptFailureStopsCall(t *testing.T) {
	a, f := loggedIn(t)
	a.encrypt = func(string, string) (string, error) { return "", common.ErrCrypto }

	err := a.UpdateInfo(context.Background(), "nick", "MALE")
	assert.True(t, errors.Is(err, common.ErrCrypto))
	assert.Equal(t, [3]string{}, f.passwords)
}
