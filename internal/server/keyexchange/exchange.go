package keyexchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// KeyGenerator produces encoded RSA pairs. *cryptox.RSAEngine satisfies it.
type KeyGenerator interface {
	GenerateKeyPair() (publicKey, privateKey string, err error)
}

// Exchange issues key pairs and answers validity questions about them.
type Exchange struct {
	store     Store
	generator KeyGenerator
	ttl       time.Duration
	now       func() time.Time
}

// NewExchange builds an Exchange whose pairs are evicted by the backend
// after ttl.
func NewExchange(store Store, generator KeyGenerator, ttl time.Duration) *Exchange {
	return &Exchange{store: store, generator: generator, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (e *Exchange) WithClock(now func() time.Time) *Exchange {
	e.now = now
	return e
}

// Issue generates and stores a pair and returns its public half.
func (e *Exchange) Issue(ctx context.Context) (string, error) {
	pub, priv, err := e.generator.GenerateKeyPair()
	if err != nil {
		return "", err
	}

	pair := models.KeyPair{PublicKey: pub, PrivateKey: priv, CreatedAt: e.now()}
	if err := e.store.Save(ctx, pair, e.ttl); err != nil {
		return "", fmt.Errorf("issue key pair: %w", err)
	}
	return pub, nil
}

// IsValid reports whether publicKey has a stored pair created no more than
// ttl ago.
func (e *Exchange) IsValid(ctx context.Context, publicKey string, ttl time.Duration) (bool, error) {
	if publicKey == "" {
		return false, nil
	}

	pair, err := e.store.Get(ctx, publicKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.now().Sub(pair.CreatedAt) <= ttl, nil
}

// Fetch returns the stored pair or common.ErrorNotFound.
func (e *Exchange) Fetch(ctx context.Context, publicKey string) (models.KeyPair, error) {
	return e.store.Get(ctx, publicKey)
}

// Consume deletes the pair after its single use.
func (e *Exchange) Consume(ctx context.Context, publicKey string) error {
	if err := e.store.Delete(ctx, publicKey); err != nil {
		return fmt.Errorf("consume key pair: %w", err)
	}
	return nil
}
