package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	server, client := newTestRedis(t)
	locker := NewRedisLocker(client, "test:", time.Minute, time.Second)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "vendor:1")
	require.NoError(t, err)
	assert.True(t, server.Exists("test:vendor:1"))

	unlock()
	assert.False(t, server.Exists("test:vendor:1"))
}

func TestRedisLocker_TimesOutWhenHeld(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisLocker(client, "test:", time.Minute, 50*time.Millisecond)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "vendor:1")
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(ctx, "vendor:1")
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedisLocker_DoesNotReleaseForeignLock(t *testing.T) {
	server, client := newTestRedis(t)
	locker := NewRedisLocker(client, "test:", time.Minute, time.Second)

	unlock, err := locker.Lock(context.Background(), "vendor:1")
	require.NoError(t, err)

	// Simulate expiry followed by another owner taking the key
	require.NoError(t, server.Set("test:vendor:1", "someone-else"))
	unlock()

	value, err := server.Get("test:vendor:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestRedisLocker_WaitsForRelease(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisLocker(client, "test:", time.Minute, 2*time.Second)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "vendor:1")
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		unlock()
	}()

	second, err := locker.Lock(ctx, "vendor:1")
	require.NoError(t, err)
	second()
}

func TestRedisLocker_ExtendsWhileHeld(t *testing.T) {
	server, client := newTestRedis(t)
	ttl := 150 * time.Millisecond
	locker := NewRedisLocker(client, "test:", ttl, time.Second)

	unlock, err := locker.Lock(context.Background(), "vendor:1")
	require.NoError(t, err)

	server.FastForward(100 * time.Millisecond)
	require.Eventually(t, func() bool {
		return server.TTL("test:vendor:1") > 100*time.Millisecond
	}, time.Second, 10*time.Millisecond)

	server.FastForward(100 * time.Millisecond)
	assert.True(t, server.Exists("test:vendor:1"), "lock outlived its original ttl")

	unlock()
	assert.False(t, server.Exists("test:vendor:1"))
}
