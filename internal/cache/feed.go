package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	feedKeyPrefix    = "feed:%s"
	profileKeyPrefix = "profile:%s"
)

// FeedTTL bounds staleness of the cached feed; writes invalidate eagerly, the
// TTL only covers writers outside this process.
const FeedTTL = 30 * time.Second

// FeedKey returns the cache key of the feed as seen by userID.
func FeedKey(userID string) string {
	return fmt.Sprintf(feedKeyPrefix, userID)
}

// ProfileKey returns the cache key of a user's own post listing.
func ProfileKey(userID string) string {
	return fmt.Sprintf(profileKeyPrefix, userID)
}

// Aside implements the cache-aside pattern: on a hit, dest is filled from the
// cached JSON; on a miss, fill is called to populate dest and the result is
// stored with the given TTL. With no Redis client it just calls fill.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fill func() error) error {
	if client == nil {
		return fill()
	}

	if raw, err := client.Get(ctx, key).Bytes(); err == nil {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
		// Corrupt entry; drop it and fall through to the source of truth.
		client.Del(ctx, key)
	}

	if err := fill(); err != nil {
		return err
	}

	if raw, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, raw, ttl)
	}
	return nil
}

// Invalidate removes a single cache key.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateFeeds removes every cached feed and profile listing. Called after
// any write that changes what a feed shows (post create/delete, like toggle).
func InvalidateFeeds(ctx context.Context) {
	if client == nil {
		return
	}
	for _, pattern := range []string{"feed:*", "profile:*"} {
		iter := client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
}
