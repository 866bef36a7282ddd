package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	clientsvc "github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	srvconfig "github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keyexchange"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/rest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newServer runs the real REST stack with in-memory backends and one account.
func newServer(t *testing.T) string {
	t.Helper()

	cfg := &srvconfig.Config{
		AccessTokenValidityDuration:  30 * time.Minute,
		RefreshTokenValidityDuration: time.Hour,
		RSATTL:                       time.Minute,
		RefreshTTL:                   time.Hour,
	}
	engine := cryptox.NewRSAEngine(1024)

	svc := services.NewSessionService(services.Dependencies{
		Keys:    keyexchange.NewExchange(keyexchange.NewMemoryStore(), engine, cfg.RSATTL),
		Cipher:  engine,
		Hasher:  cryptox.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:  auth.NewCodec("secret", cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration),
		Access:  credentials.NewMemoryAccessStore(),
		Refresh: credentials.NewMemoryRefreshStore(),
		Repos:   repomanager.NewMemoryRepositoryManager(),
	}, cfg)

	_, err := svc.EnsureAccount(context.Background(), "bob", "pw-1", models.RoleUser)
	require.NoError(t, err)

	srv := httptest.NewServer(rest.NewHTTPServer("", logging.Discard(), svc, nil).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// stubPasswords makes getPassword return pw in order.
func stubPasswords(t *testing.T, pw ...string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })

	getPassword = func(string, io.Writer) (string, error) {
		next := pw[0]
		pw = pw[1:]
		return next, nil
	}
}

func newTestApp(t *testing.T, url, input string) (*App, *bytes.Buffer) {
	t.Helper()
	c := &config.Config{ServerURL: url, RequestTimeout: 5 * time.Second}
	var out bytes.Buffer
	svc := clientsvc.NewAuthService(client.NewHTTPClient(url, c.RequestTimeout))
	return newApp(c, svc, strings.NewReader(input), &out), &out
}

func TestSession_EndToEnd(t *testing.T) {
	url := newServer(t)
	stubPasswords(t, "pw-1", "pw-1", "pw-1", "pw-1", "pw-1", "pw-2", "pw-2")

	script := strings.Join([]string{
		"login", "bob",
		"passwd",
		"passwd",
		"nickname", "Bobby", "male",
		"info",
		"refresh",
		"logout",
		"exit",
	}, "\n") + "\n"

	app, out := newTestApp(t, url, script)
	app.Run(context.Background())

	got := out.String()
	assert.Contains(t, got, "Login successful")
	assert.Contains(t, got, "must differ from the current one")
	assert.Contains(t, got, "Password changed")
	assert.Contains(t, got, "Profile updated")
	assert.Contains(t, got, "Nickname:  Bobby")
	assert.Contains(t, got, "Gender:    MALE")
	assert.Contains(t, got, "Role:      USER")
	assert.Contains(t, got, "Access token refreshed")
	assert.Contains(t, got, "Logged out")
	assert.NotContains(t, got, "Warning:")
	assert.False(t, app.isLoggedIn())
}

func TestLogin_WrongPassword(t *testing.T) {
	url := newServer(t)
	stubPasswords(t, "nope")

	app, out := newTestApp(t, url, "bob\n")
	err := app.Login(context.Background())

	assert.Equal(t, "UNAUTHENTICATED", client.CodeOf(err))
	assert.False(t, app.isLoggedIn())
	assert.NotContains(t, out.String(), "Login successful")
}

func TestWithdraw_RequiresConfirmation(t *testing.T) {
	url := newServer(t)
	stubPasswords(t, "pw-1", "pw-1")
	ctx := context.Background()

	app, out := newTestApp(t, url, "bob\nno\nyes\nbob\n")
	require.NoError(t, app.Login(ctx))

	require.NoError(t, app.Withdraw(ctx))
	assert.Contains(t, out.String(), "Cancelled")
	assert.True(t, app.isLoggedIn())

	require.NoError(t, app.Withdraw(ctx))
	assert.Contains(t, out.String(), "Account withdrawn")
	assert.False(t, app.isLoggedIn())

	err := app.Login(ctx)
	assert.Equal(t, "ENTITY_NOT_FOUND", client.CodeOf(err))
}

func TestRun_WarnsWhenServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	app, out := newTestApp(t, url, "exit\n")
	app.Run(context.Background())

	assert.Contains(t, out.String(), "is not reachable")
}
