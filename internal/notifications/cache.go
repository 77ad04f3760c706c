package notifications

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// unreadCountTTL bounds staleness if an invalidation is ever lost.
const unreadCountTTL = 5 * time.Minute

// UnreadCounter caches per-profile unread notification counts in Redis. The
// count is checked on every page render, so it is the one read the feed
// keeps out of the database. A nil counter is valid and falls through to
// the loader.
type UnreadCounter struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewUnreadCounter creates an UnreadCounter on the given Redis client.
func NewUnreadCounter(rdb *redis.Client, log *zap.Logger) *UnreadCounter {
	return &UnreadCounter{rdb: rdb, log: log}
}

func unreadCountKey(profileID uint) string {
	return fmt.Sprintf("notifications:unread:%d", profileID)
}

// Get returns the cached unread count, filling the cache from load on miss.
// Cache failures degrade to the loader, never to an error.
func (c *UnreadCounter) Get(ctx context.Context, profileID uint, load func() (int64, error)) (int64, error) {
	if c == nil || c.rdb == nil {
		return load()
	}

	val, err := c.rdb.Get(ctx, unreadCountKey(profileID)).Result()
	if err == nil {
		if count, perr := strconv.ParseInt(val, 10, 64); perr == nil {
			return count, nil
		}
	} else if err != redis.Nil {
		c.log.Warn("unread count cache read failed", zap.Uint("profile_id", profileID), zap.Error(err))
	}

	count, err := load()
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Set(ctx, unreadCountKey(profileID), count, unreadCountTTL).Err(); err != nil {
		c.log.Warn("unread count cache write failed", zap.Uint("profile_id", profileID), zap.Error(err))
	}
	return count, nil
}

// Invalidate drops the cached count after any write that changes it.
func (c *UnreadCounter) Invalidate(ctx context.Context, profileID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, unreadCountKey(profileID)).Err(); err != nil {
		c.log.Warn("unread count cache invalidation failed", zap.Uint("profile_id", profileID), zap.Error(err))
	}
}
