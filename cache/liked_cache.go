package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// likedTTL bounds staleness if an invalidation is ever missed.
const likedTTL = 24 * time.Hour

// LikedCache keeps each user's liked-song id set in redis. It is a pure
// read cache over the liked_songs table: mutations go to the database first
// and then invalidate here.
type LikedCache struct {
	client *redis.Client
}

// NewLikedCache wraps a redis client. A nil client produces a cache whose
// reads always miss, so callers need no special casing.
func NewLikedCache(client *redis.Client) *LikedCache {
	return &LikedCache{client: client}
}

// Available reports whether a live redis client backs the cache.
func (c *LikedCache) Available() bool {
	return c != nil && c.client != nil
}

func likedKey(userID int64) string {
	return fmt.Sprintf("liked:%d", userID)
}

// GetSongIDs returns the cached liked-song ids for the user, or (nil, false)
// on a miss.
func (c *LikedCache) GetSongIDs(ctx context.Context, userID int64) ([]int64, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	members, err := c.client.SMembers(ctx, likedKey(userID)).Result()
	if err != nil || len(members) == 0 {
		return nil, false
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			// Corrupt entry: drop the whole set rather than serve junk.
			c.Invalidate(ctx, userID)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// SetSongIDs replaces the cached set for a user.
func (c *LikedCache) SetSongIDs(ctx context.Context, userID int64, songIDs []int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	key := likedKey(userID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(songIDs) > 0 {
		members := make([]interface{}, 0, len(songIDs))
		for _, id := range songIDs {
			members = append(members, strconv.FormatInt(id, 10))
		}
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, likedTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache liked songs: %w", err)
	}
	return nil
}

// Invalidate drops the cached set for a user.
func (c *LikedCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, likedKey(userID))
}
