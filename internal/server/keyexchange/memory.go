package keyexchange

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type MemoryStore struct {
	pairs *cache.TTLMap[models.KeyPair]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pairs: cache.NewTTLMap[models.KeyPair]()}
}

func (s *MemoryStore) Save(_ context.Context, pair models.KeyPair, ttl time.Duration) error {
	s.pairs.Set(pair.PublicKey, pair, ttl)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, publicKey string) (models.KeyPair, error) {
	pair, ok := s.pairs.Get(publicKey)
	if !ok {
		return models.KeyPair{}, common.ErrorNotFound
	}
	return pair, nil
}

func (s *MemoryStore) Delete(_ context.Context, publicKey string) error {
	s.pairs.Delete(publicKey)
	return nil
}

func (s *MemoryStore) Sweep() int {
	return s.pairs.Sweep()
}
