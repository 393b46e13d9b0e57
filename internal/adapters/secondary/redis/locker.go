package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

const (
	lockPrefix        = "user-registry:avatar-lock:"
	defaultLockTTL    = time.Minute
	defaultRetryDelay = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a ports.KeyedLocker shared by every process using the same
// redis. A lock expires after its TTL if the holder dies.
type Locker struct {
	rdb        *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ ports.KeyedLocker = (*Locker)(nil)

func NewLocker(c *Client, ttl time.Duration, logger *slog.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{
		rdb:        c.rdb,
		ttl:        ttl,
		retryDelay: defaultRetryDelay,
		logger:     logger.With("component", "redis_locker"),
	}
}

// Lock polls SET NX PX until the key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockPrefix + key
	token := uuid.NewString()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for lock %q: %w", apperrors.ErrTimeout, key, ctx.Err())
		case <-timer.C:
		}

		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: waiting for lock %q: %w", apperrors.ErrTimeout, key, ctx.Err())
			}
			return nil, fmt.Errorf("%w: acquire %q: %w", apperrors.ErrLock, key, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}
		timer.Reset(l.retryDelay)
	}
}

func (l *Locker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { l.release(redisKey, token) })
	}
}

func (l *Locker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Error("lock release failed", "key", redisKey, "error", err)
	}
}
