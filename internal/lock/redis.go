package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default Redis lock timings.
const (
	DefaultTTL      = 30 * time.Second
	DefaultInterval = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every instance pointing at the same Redis.
type Redis struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	interval time.Duration
}

// NewRedis creates a Redis locker. ttl bounds how long a crashed holder can
// block others; zero values fall back to the defaults.
func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "foundit"
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl, interval: DefaultInterval}
}

func (r *Redis) key(id int64) string {
	return fmt.Sprintf("%s:item-lock:%d", r.prefix, id)
}

// Lock implements Locker by polling SET NX until it succeeds.
func (r *Redis) Lock(ctx context.Context, id int64) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generating lock token: %w", err)
	}
	key := r.key(id)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
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

	return func() {
		// Release with a fresh context: the caller's may already be done.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.rdb, []string{key}, token).Err(); err != nil {
			slog.Error("failed to release item lock", "key", key, "error", err)
		}
	}, nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
