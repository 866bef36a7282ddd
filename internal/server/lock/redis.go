package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultLease = 5 * time.Second
	DefaultRetry = 20 * time.Millisecond
)

// Redis implements Locker with SET NX PX. Each holder writes a random token
// and only deletes the key while it still holds that token, so an expired
// lease cannot release someone else's lock.
type Redis struct {
	client redis.UniversalClient
	lease  time.Duration
	retry  time.Duration
}

func NewRedis(client redis.UniversalClient, lease, retry time.Duration) *Redis {
	if lease <= 0 {
		lease = DefaultLease
	}
	if retry <= 0 {
		retry = DefaultRetry
	}
	return &Redis{client: client, lease: lease, retry: retry}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := cache.Key("lock", key)
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, k, token, r.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), r.lease)
			defer cancel()
			_, _ = cache.DeleteIfEquals(ctx, r.client, k, token)
		})
	}, nil
}
