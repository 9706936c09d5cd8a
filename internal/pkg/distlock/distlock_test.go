package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisLockAcquireRelease(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	a := NewRedisLock(rdb, "inbox:poll", time.Minute)
	b := NewRedisLock(rdb, "inbox:poll", time.Minute)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second owner should not acquire a held lock")

	require.NoError(t, a.Release(ctx))

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "lock should be free after release")
}

func TestRedisLockReleaseRequiresOwnership(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	a := NewRedisLock(rdb, "inbox:poll", time.Minute)
	b := NewRedisLock(rdb, "inbox:poll", time.Minute)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// A non-owner release must not free the lock.
	require.NoError(t, b.Release(ctx))

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewLockPicksBackend(t *testing.T) {
	rdb := newTestRedis(t)

	_, isRedis := NewLock(rdb, nil, "k", time.Minute).(*RedisLock)
	assert.True(t, isRedis)

	_, isPG := NewLock(nil, nil, "k", time.Minute).(*PGAdvisoryLock)
	assert.True(t, isPG)
}

func TestPGAdvisoryLockIDIsDeterministic(t *testing.T) {
	a := NewPGAdvisoryLock(nil, "inbox:poll")
	b := NewPGAdvisoryLock(nil, "inbox:poll")
	c := NewPGAdvisoryLock(nil, "other")

	assert.Equal(t, a.lockID, b.lockID)
	assert.NotEqual(t, a.lockID, c.lockID)
}
