package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ListingCache implements domain.ListingCache. Values are the serialized
// listing payloads handed in by the caller; the cache does not interpret
// them.
//
// Key schema:
//
//	listing:{isoWeek} - serialized weekly listing, e.g. listing:2024-W06
type ListingCache struct {
	rdb *redis.Client
}

// NewListingCache creates a ListingCache backed by the given Client.
func NewListingCache(c *Client) *ListingCache {
	return &ListingCache{rdb: c.Underlying()}
}

func listingKey(isoWeek string) string { return "listing:" + isoWeek }

// Set stores a listing payload under its ISO week label with the caller's
// TTL. Statuses are resolved at assembly time, so TTLs stay short.
func (lc *ListingCache) Set(ctx context.Context, isoWeek string, payload []byte, ttl time.Duration) error {
	if err := lc.rdb.Set(ctx, listingKey(isoWeek), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set listing %s: %w", isoWeek, err)
	}
	return nil
}

// Get retrieves a cached listing payload. It returns domain.ErrNotFound when
// no entry exists for the week.
func (lc *ListingCache) Get(ctx context.Context, isoWeek string) ([]byte, error) {
	data, err := lc.rdb.Get(ctx, listingKey(isoWeek)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get listing %s: %w", isoWeek, err)
	}
	return data, nil
}

// Invalidate drops the cached listing for a week.
func (lc *ListingCache) Invalidate(ctx context.Context, isoWeek string) error {
	if err := lc.rdb.Del(ctx, listingKey(isoWeek)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate listing %s: %w", isoWeek, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ListingCache = (*ListingCache)(nil)
