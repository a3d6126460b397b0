package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bepeace/telemed/config"
	"github.com/bepeace/telemed/internal/calendar"
)

// RedisCache holds the short-lived slot locks taken during checkout.
// Mutual exclusion comes from SETNX; expiry is redis-native, so a lock
// abandoned by a crashed client disappears after its TTL without any
// sweep and readers can never observe an expired lock.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// NewRedisCacheWithClient is used by tests to inject a miniredis-backed client.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// AcquireSlotLock claims (date, slot) for holder. Exactly one of any
// number of concurrent callers wins.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, date, slot, holder string, ttl time.Duration) (bool, error) {
	key, err := slotLockKey(date, slot)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, key, holder, ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, date, slot string) error {
	key, err := slotLockKey(date, slot)
	if err != nil {
		return err
	}
	return c.client.Del(ctx, key).Err()
}

// LockHolder returns the holder of the lock on (date, slot), or "" when
// the slot is free.
func (c *RedisCache) LockHolder(ctx context.Context, date, slot string) (string, error) {
	key, err := slotLockKey(date, slot)
	if err != nil {
		return "", err
	}
	holder, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return holder, nil
}

// HeldSlots returns the set of canonical slot labels currently locked on
// a date, via a single MGET over the day's 24 keys.
func (c *RedisCache) HeldSlots(ctx context.Context, date string) (map[string]bool, error) {
	keys := make([]string, 0, calendar.SlotsPerDay)
	for h := 0; h < calendar.SlotsPerDay; h++ {
		keys = append(keys, fmt.Sprintf("lock:slot:%s:%02d", date, h))
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool)
	for h, v := range values {
		if v != nil {
			held[calendar.SlotLabel(h)] = true
		}
	}
	return held, nil
}

func slotLockKey(date, slot string) (string, error) {
	hour, err := calendar.ParseSlot(slot)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("lock:slot:%s:%02d", date, hour), nil
}
