package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// compare-and-delete so a holder whose lease expired cannot free a lock that
// was re-acquired by someone else
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions tunes a RedisLocker
type RedisOptions struct {
	Prefix     string
	TTL        time.Duration
	RetryDelay time.Duration
	MaxWait    time.Duration
}

func (o RedisOptions) withDefaults() RedisOptions {
	if o.Prefix == "" {
		o.Prefix = "collab-board:lock:"
	}
	if o.TTL <= 0 {
		o.TTL = 5 * time.Second
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 25 * time.Millisecond
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 3 * time.Second
	}
	return o
}

// RedisLocker takes leases with SET NX PX
type RedisLocker struct {
	client    *redis.Client
	opts      RedisOptions
	onContend ContentionFunc
	logger    *zap.Logger
}

// NewRedisLocker creates a RedisLocker on client
func NewRedisLocker(client *redis.Client, opts RedisOptions, onContend ContentionFunc, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client:    client,
		opts:      opts.withDefaults(),
		onContend: onContend,
		logger:    logger,
	}
}

// Lock polls until the lease is granted, MaxWait elapses or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.opts.Prefix + key
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.opts.MaxWait)
	defer cancel()

	contended := false
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.opts.TTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("acquire %s: %w", redisKey, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}
		if !contended {
			contended = true
			if l.onContend != nil {
				l.onContend()
			}
		}

		timer := time.NewTimer(l.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ErrNotAcquired
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn("Failed to release lock",
					zap.String("key", redisKey),
					zap.Error(err))
			}
		})
	}
}
