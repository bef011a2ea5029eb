// Package runlock serializes long-running jobs per key (one bulk automation
// run per church at a time).
//
// Redis backs the lock when configured so that several app instances share
// it; otherwise an in-process keyed lock is used.
package runlock

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long a crashed holder can block a key.
const DefaultTTL = 15 * time.Minute

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a SET NX PX lock.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedis builds a Redis-backed locker. A zero ttl means DefaultTTL.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, log: logger}
}

// Acquire takes the lock or returns automation.ErrRunInProgress.
func (l *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	full := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, automation.ErrRunInProgress
	}

	return func() {
		// Release on a fresh context: the caller's may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{full}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("run lock release failed", zap.String("key", full), zap.Error(err))
		}
	}, nil
}

// Local is an in-process keyed lock.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal builds an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

// Acquire takes the lock or returns automation.ErrRunInProgress.
func (l *Local) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, automation.ErrRunInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// NewRedisClient opens a client; callers Ping before relying on it.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
