package keyexchange

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each pair as a JSON value with a Redis-side TTL.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(c redis.Cmdable) *RedisStore {
	return &RedisStore{client: c}
}

// Public keys are ~400 base64 chars; the key is their SHA-256 instead.
func pairKey(publicKey string) string {
	sum := sha256.Sum256([]byte(publicKey))
	return cache.Key("rsa", hex.EncodeToString(sum[:]))
}

func (s *RedisStore) Save(ctx context.Context, pair models.KeyPair, ttl time.Duration) error {
	if err := cache.SetJSON(ctx, s.client, pairKey(pair.PublicKey), pair, ttl); err != nil {
		return fmt.Errorf("save key pair: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, publicKey string) (models.KeyPair, error) {
	var pair models.KeyPair
	if err := cache.GetJSON(ctx, s.client, pairKey(publicKey), &pair); err != nil {
		return models.KeyPair{}, err
	}
	return pair, nil
}

func (s *RedisStore) Delete(ctx context.Context, publicKey string) error {
	if err := s.client.Del(ctx, pairKey(publicKey)).Err(); err != nil {
		return fmt.Errorf("delete key pair: %w", err)
	}
	return nil
}
