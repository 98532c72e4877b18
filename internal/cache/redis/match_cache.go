package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// matchTTL keeps cached summaries fresh enough that a stale raw status never
// outlives one betting-close window by much.
const matchTTL = time.Minute

// MatchCache implements domain.MatchCache using JSON-serialized summaries.
//
// Key schema:
//
//	match:{id} - JSON-encoded MatchSummary
type MatchCache struct {
	rdb *redis.Client
}

// NewMatchCache creates a MatchCache backed by the given Client.
func NewMatchCache(c *Client) *MatchCache {
	return &MatchCache{rdb: c.Underlying()}
}

func matchKey(id string) string { return "match:" + id }

// Set stores a match summary with a one-minute TTL.
func (mc *MatchCache) Set(ctx context.Context, match domain.MatchSummary) error {
	data, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("redis: marshal match %s: %w", match.ID, err)
	}

	if err := mc.rdb.Set(ctx, matchKey(match.ID), data, matchTTL).Err(); err != nil {
		return fmt.Errorf("redis: set match %s: %w", match.ID, err)
	}
	return nil
}

// Get retrieves a match summary by id. It returns domain.ErrNotFound when the
// key does not exist.
func (mc *MatchCache) Get(ctx context.Context, id string) (domain.MatchSummary, error) {
	data, err := mc.rdb.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.MatchSummary{}, domain.ErrNotFound
		}
		return domain.MatchSummary{}, fmt.Errorf("redis: get match %s: %w", id, err)
	}

	var match domain.MatchSummary
	if err := json.Unmarshal(data, &match); err != nil {
		return domain.MatchSummary{}, fmt.Errorf("redis: unmarshal match %s: %w", id, err)
	}
	return match, nil
}

// Invalidate removes a match summary from the cache.
func (mc *MatchCache) Invalidate(ctx context.Context, id string) error {
	if err := mc.rdb.Del(ctx, matchKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate match %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MatchCache = (*MatchCache)(nil)
