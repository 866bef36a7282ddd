// Package client is the REST transport used by the CLI.
package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// Client mirrors the server's REST surface. Sign-in credentials, passwords and the nickname are
// expected to be encrypted with the public key passed alongside them.
type Client interface {
	Ping(ctx context.Context) error
	PublicKey(ctx context.Context) (string, error)
	SignIn(ctx context.Context, publicKey, username, password string) (models.Tokens, error)
	SignOut(ctx context.Context, accessToken string) error
	Info(ctx context.Context, accessToken string) (*models.Info, error)
	UpdateInfo(ctx context.Context, accessToken, publicKey, nickname, gender string) error
	ChangePassword(ctx context.Context, accessToken, publicKey, originPassword, password string) error
	Withdraw(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken, accessToken string) (string, error)
}
