package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UnreadCache caches per-user unread notification counts. It is optional: a
// nil client disables caching and every lookup misses.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCache builds the cache around an optional redis client.
func NewUnreadCache(client *redis.Client) *UnreadCache {
	return &UnreadCache{client: client, ttl: 5 * time.Minute}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// Get returns the cached count, or ok=false on a miss or cache error.
func (c *UnreadCache) Get(ctx context.Context, userID int64) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with the cache TTL.
func (c *UnreadCache) Set(ctx context.Context, userID int64, count int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, unreadKey(userID), count, c.ttl)
}

// Invalidate drops the cached count after a write that changes it.
func (c *UnreadCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, unreadKey(userID))
}
