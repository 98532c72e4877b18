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

// StandingsCache implements domain.StandingsCache. The leaderboard watcher
// refreshes it on its own cadence, so entries carry no TTL; the stored
// fetch time lets readers judge staleness themselves.
//
// Key schema:
//
//	standings:current - JSON-encoded standingsEntry
type StandingsCache struct {
	rdb *redis.Client
}

// NewStandingsCache creates a StandingsCache backed by the given Client.
func NewStandingsCache(c *Client) *StandingsCache {
	return &StandingsCache{rdb: c.Underlying()}
}

const standingsKey = "standings:current"

type standingsEntry struct {
	Standings []domain.AgentStanding `json:"standings"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// Set replaces the cached leaderboard, stamping the fetch time.
func (sc *StandingsCache) Set(ctx context.Context, standings []domain.AgentStanding) error {
	data, err := json.Marshal(standingsEntry{
		Standings: standings,
		FetchedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("redis: marshal standings: %w", err)
	}

	if err := sc.rdb.Set(ctx, standingsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set standings: %w", err)
	}
	return nil
}

// Get returns the cached leaderboard and when it was fetched. It returns
// domain.ErrNotFound before the first Set.
func (sc *StandingsCache) Get(ctx context.Context) ([]domain.AgentStanding, time.Time, error) {
	data, err := sc.rdb.Get(ctx, standingsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, domain.ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("redis: get standings: %w", err)
	}

	var entry standingsEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: unmarshal standings: %w", err)
	}
	return entry.Standings, entry.FetchedAt, nil
}

// Compile-time interface check.
var _ domain.StandingsCache = (*StandingsCache)(nil)
