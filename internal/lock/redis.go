package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/pkg/logger"
)

const (
	minBackoff = 10 * time.Millisecond
	maxBackoff = 500 * time.Millisecond
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a Locker shared by every instance using the same Redis. Each
// lock carries a random token so only its owner can release it, and a TTL so
// a crashed owner cannot hold it forever. While held, the TTL is extended
// every third of its length.
type RedisLocker struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	timeout   time.Duration
}

// NewRedisLocker creates a RedisLocker. timeout bounds how long Lock waits
// when the context has no earlier deadline.
func NewRedisLocker(client redis.UniversalClient, keyPrefix string, ttl, timeout time.Duration) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisLocker{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		timeout:   timeout,
	}
}

// Lock retries SET NX with exponential backoff until it succeeds or the wait times out
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := l.keyPrefix + key
	token := uuid.New().String()

	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	backoff := minBackoff
	for {
		ok, err := l.client.SetNX(waitCtx, lockKey, token, l.ttl).Result()
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, errors.Join(ErrNotAcquired, waitCtx.Err())
			}
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-waitCtx.Done():
			return nil, errors.Join(ErrNotAcquired, waitCtx.Err())
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	logger.FromContext(ctx).Debug("Acquired lock", zap.String("key", lockKey))

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(ctx, lockKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(ctx, lockKey, token)
		})
	}, nil
}

// keepAlive extends the lock until stop is closed or ownership is lost
func (l *RedisLocker) keepAlive(ctx context.Context, lockKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if l.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			extendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.ttl/3)
			result, err := extendScript.Run(extendCtx, l.client, []string{lockKey}, token, l.ttl.Milliseconds()).Int64()
			cancel()
			if err != nil {
				logger.FromContext(ctx).Warn("Failed to extend lock", zap.String("key", lockKey), zap.Error(err))
				continue
			}
			if result == 0 {
				logger.FromContext(ctx).Warn("Lost lock before release", zap.String("key", lockKey))
				return
			}
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, lockKey, token string) {
	// Release even when the caller's context has been canceled
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	result, err := releaseScript.Run(releaseCtx, l.client, []string{lockKey}, token).Int64()
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to release lock", zap.String("key", lockKey), zap.Error(err))
		return
	}
	if result == 0 {
		logger.FromContext(ctx).Warn("Lock expired before release", zap.String("key", lockKey))
	}
}
