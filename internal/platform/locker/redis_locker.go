package locker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

// releaseScript deletes the key only if we still own it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	log   *logger.Logger
	rdb   goredis.UniversalClient
	ttl   time.Duration
	retry time.Duration
}

// NewRedis returns a locker shared by every replica using rdb. ttl bounds how
// long a crashed holder can keep a key.
func NewRedis(rdb goredis.UniversalClient, ttl time.Duration, log *logger.Logger) (Locker, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &redisLocker{log: log.With("service", "RedisLocker"), rdb: rdb, ttl: ttl, retry: 25 * time.Millisecond}, nil
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	wait := l.retry
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		if wait < 250*time.Millisecond {
			wait *= 2
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.log.Warn("redis unlock failed", "key", key, "error", err)
		}
	}, nil
}
