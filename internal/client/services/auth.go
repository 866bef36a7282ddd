// Package services holds the CLI's session state and the flows that drive
// the server API: key exchange, encryption of secrets and token refresh.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrSessionEnded = errors.New("session ended, please log in again")
)

// AuthService keeps the token pair in memory for the lifetime of the process.
type AuthService struct {
	client  client.Client
	encrypt func(plain, publicKey string) (string, error)

	mu       sync.Mutex
	username string
	tokens   models.Tokens
}

func NewAuthService(c client.Client) *AuthService {
	return &AuthService{client: c, encrypt: cryptox.Encrypt}
}

func (a *AuthService) IsLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tokens.AccessToken != ""
}

func (a *AuthService) Username() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.username
}

func (a *AuthService) session() (models.Tokens, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tokens, a.tokens.AccessToken != ""
}

func (a *AuthService) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.username = ""
	a.tokens = models.Tokens{}
}

// sealed fetches a fresh public key and encrypts every plain value with it.
func (a *AuthService) sealed(ctx context.Context, plain ...string) (string, []string, error) {
	pub, err := a.client.PublicKey(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("public key: %w", err)
	}

	out := make([]string, len(plain))
	for i, p := range plain {
		if out[i], err = a.encrypt(p, pub); err != nil {
			return "", nil, err
		}
	}
	return pub, out, nil
}

func (a *AuthService) Login(ctx context.Context, username, password string) error {
	pub, enc, err := a.sealed(ctx, username, password)
	if err != nil {
		return err
	}

	tokens, err := a.client.SignIn(ctx, pub, enc[0], enc[1])
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.username = username
	a.tokens = tokens
	a.mu.Unlock()
	return nil
}

// Refresh trades the refresh token for a new access token. A rejected
// refresh ends the local session, since the server has revoked it.
func (a *AuthService) Refresh(ctx context.Context) error {
	tokens, ok := a.session()
	if !ok {
		return ErrNotLoggedIn
	}

	next, err := a.client.Refresh(ctx, tokens.RefreshToken, tokens.AccessToken)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) || client.CodeOf(err) == common.CodeInternal {
			return err
		}
		a.clear()
		return fmt.Errorf("%w: %v", ErrSessionEnded, err)
	}

	a.mu.Lock()
	a.tokens.AccessToken = next
	a.mu.Unlock()
	return nil
}

// withAccess calls fn with the current access token, refreshing once if the
// server reports it expired.
func (a *AuthService) withAccess(ctx context.Context, fn func(accessToken string) error) error {
	tokens, ok := a.session()
	if !ok {
		return ErrNotLoggedIn
	}

	err := fn(tokens.AccessToken)
	if client.CodeOf(err) != common.CodeExpiredToken {
		return err
	}

	if err := a.Refresh(ctx); err != nil {
		return err
	}
	tokens, _ = a.session()
	return fn(tokens.AccessToken)
}

func (a *AuthService) Info(ctx context.Context) (*models.Info, error) {
	var info *models.Info
	err := a.withAccess(ctx, func(access string) error {
		var err error
		info, err = a.client.Info(ctx, access)
		return err
	})
	return info, err
}

func (a *AuthService) UpdateInfo(ctx context.Context, nickname, gender string) error {
	return a.withAccess(ctx, func(access string) error {
		pub, enc, err := a.sealed(ctx, nickname)
		if err != nil {
			return err
		}
		return a.client.UpdateInfo(ctx, access, pub, enc[0], gender)
	})
}

func (a *AuthService) ChangePassword(ctx context.Context, originPassword, password string) error {
	return a.withAccess(ctx, func(access string) error {
		pub, enc, err := a.sealed(ctx, originPassword, password)
		if err != nil {
			return err
		}
		return a.client.ChangePassword(ctx, access, pub, enc[0], enc[1])
	})
}

// Logout signs out on the server and always forgets the local tokens.
func (a *AuthService) Logout(ctx context.Context) error {
	err := a.withAccess(ctx, func(access string) error {
		return a.client.SignOut(ctx, access)
	})
	a.clear()
	if errors.Is(err, ErrSessionEnded) {
		return nil
	}
	return err
}

func (a *AuthService) Withdraw(ctx context.Context) error {
	err := a.withAccess(ctx, func(access string) error {
		return a.client.Withdraw(ctx, access)
	})
	if err != nil {
		return err
	}
	a.clear()
	return nil
}

func (a *AuthService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
