package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheWithClient(client), mr
}

func TestAcquireSlotLock_Exclusive(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_1", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must lose")

	// Different slot and different date are independent.
	ok, err = cache.AcquireSlotLock(ctx, "2025-06-01", "11:00 AM", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = cache.AcquireSlotLock(ctx, "2025-06-02", "10:00 AM", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquireSlotLock_NormalizesLabel(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_1", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// A differently-spelled label addresses the same lock.
	ok, err = cache.AcquireSlotLock(ctx, "2025-06-01", " 10:00 am", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReleaseSlotLock(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_1", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, cache.ReleaseSlotLock(ctx, "2025-06-01", "10:00 AM"))

	ok, err = cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released slot must be acquirable")
}

func TestSlotLock_ExpiresAfterTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_1", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(4 * time.Minute)
	ok, err = cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lock must hold before TTL")

	mr.FastForward(2 * time.Minute)
	ok, err = cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock must expire after TTL without explicit release")
}

func TestLockHolder(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	holder, err := cache.LockHolder(ctx, "2025-06-01", "10:00 AM")
	require.NoError(t, err)
	assert.Empty(t, holder)

	_, err = cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_1", 5*time.Minute)
	require.NoError(t, err)

	holder, err = cache.LockHolder(ctx, "2025-06-01", "10:00 AM")
	require.NoError(t, err)
	assert.Equal(t, "ORDER_1", holder)
}

func TestHeldSlots(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	held, err := cache.HeldSlots(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Empty(t, held)

	_, err = cache.AcquireSlotLock(ctx, "2025-06-01", "10:00 AM", "ORDER_1", 5*time.Minute)
	require.NoError(t, err)
	_, err = cache.AcquireSlotLock(ctx, "2025-06-01", "11:00 PM", "ORDER_2", 5*time.Minute)
	require.NoError(t, err)
	_, err = cache.AcquireSlotLock(ctx, "2025-06-02", "09:00 AM", "ORDER_3", 5*time.Minute)
	require.NoError(t, err)

	held, err = cache.HeldSlots(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"10:00 AM": true, "11:00 PM": true}, held)
}

func TestSlotLock_InvalidLabel(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.AcquireSlotLock(ctx, "2025-06-01", "10:30 AM", "ORDER_1", time.Minute)
	assert.Error(t, err)
}
