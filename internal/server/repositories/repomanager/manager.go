// Package repomanager hands out account repositories bound to either a
// PostgreSQL database or process memory, and owns schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	Accounts() accounts.Repository
	// WithTx runs fn with a repository whose writes commit or roll back
	// together.
	WithTx(ctx context.Context, fn func(ctx context.Context, repo accounts.Repository) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}
