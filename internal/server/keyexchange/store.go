// Package keyexchange keeps transient RSA key pairs handed to clients for
// encrypting credentials. A pair is looked up by its public key, used for a
// single credential-bearing request and then consumed.
package keyexchange

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Store is the storage backend for key pairs. Get returns
// common.ErrorNotFound for unknown or evicted keys; Delete is idempotent.
type Store interface {
	Save(ctx context.Context, pair models.KeyPair, ttl time.Duration) error
	Get(ctx context.Context, publicKey string) (models.KeyPair, error)
	Delete(ctx context.Context, publicKey string) error
}
