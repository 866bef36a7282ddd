package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this service writes to Redis.
const KeyPrefix = "gophauth"

// RedisOptions is the subset of connection settings exposed in config.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings, so a bad address fails at start-up
// instead of on the first sign-in.
func NewRedisClient(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", o.Addr, err)
	}
	return c, nil
}

// Key joins parts under KeyPrefix: Key("access", id) -> "gophauth:access:<id>".
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}

// SetJSON stores v as JSON under key. A non-positive ttl means no expiry.
func SetJSON(ctx context.Context, c redis.Cmdable, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.Set(ctx, key, b, ttl).Err()
}

// GetJSON loads key into v and returns common.ErrorNotFound if it is absent.
func GetJSON(ctx context.Context, c redis.Cmdable, key string, v any) error {
	b, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// GetString returns the raw value at key or common.ErrorNotFound.
func GetString(ctx context.Context, c redis.Cmdable, key string) (string, error) {
	s, err := c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return s, nil
}

var deleteIfEqualsScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DeleteIfEquals removes key only while it still holds value and reports
// whether it did.
func DeleteIfEquals(ctx context.Context, c redis.Scripter, key, value string) (bool, error) {
	n, err := deleteIfEqualsScript.Run(ctx, c, []string{key}, value).Int()
	if err != nil {
		return false, fmt.Errorf("redis compare-delete %s: %w", key, err)
	}
	return n == 1, nil
}
