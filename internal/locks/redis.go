package locks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
)

const lockKeyPrefix = "sla:lock:ticket:"

// releaseScript deletes the lock only when the caller still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`)

// RedisManager implements per-ticket locks across instances with SET NX plus
// a TTL so a crashed holder cannot wedge a ticket forever.
type RedisManager struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewRedisManager constructs the manager.
func NewRedisManager(client *redis.Client, logger *zap.Logger, ttl, wait, retry time.Duration) *RedisManager {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if wait <= 0 {
		wait = 2 * time.Second
	}
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisManager{client: client, logger: logger, ttl: ttl, wait: wait, retry: retry}
}

// Acquire takes the ticket lock, retrying until the wait bound elapses.
func (m *RedisManager) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(m.wait)

	for {
		ok, err := m.client.SetNX(ctx, redisKey, token, m.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { m.release(redisKey, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retry):
		}
	}
}

func (m *RedisManager) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, m.client, []string{redisKey}, token).Err(); err != nil && err != redis.Nil {
		m.logger.Warn("failed to release ticket lock", zap.String("key", redisKey), zap.Error(err))
	}
}
