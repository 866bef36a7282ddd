// Package accounts persists sign-in identities.
package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// ErrUsernameTaken is returned by Create when the username is in use.
var ErrUsernameTaken = errors.New("username already exists")

// Repository is the account store used by the session service. Lookups of
// unknown or withdrawn ids return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdateSignAt(ctx context.Context, id string, at time.Time) error
	// UpdatePassword stores hash as the current password and moves the
	// previous current hash into PreviousPassword.
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateProfile(ctx context.Context, id, nickname string, gender models.Gender) error
	Withdraw(ctx context.Context, id string, at time.Time) error
}
