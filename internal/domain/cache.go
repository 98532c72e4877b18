package domain

import (
	"context"
	"time"
)

// MatchCache provides fast lookups of recently fetched match summaries.
type MatchCache interface {
	Set(ctx context.Context, match MatchSummary) error
	Get(ctx context.Context, id string) (MatchSummary, error)
	Invalidate(ctx context.Context, id string) error
}

// ListingCache caches assembled weekly listings keyed by ISO week label.
// Entries are short-lived: a listing embeds statuses resolved at assembly
// time, so a stale entry would show an outdated lifecycle state.
type ListingCache interface {
	Set(ctx context.Context, isoWeek string, payload []byte, ttl time.Duration) error
	Get(ctx context.Context, isoWeek string) ([]byte, error)
	Invalidate(ctx context.Context, isoWeek string) error
}

// StandingsCache holds the last successfully fetched agent leaderboard.
type StandingsCache interface {
	Set(ctx context.Context, standings []AgentStanding) error
	Get(ctx context.Context) ([]AgentStanding, time.Time, error)
}

// LockManager provides distributed mutual exclusion, used to keep archive
// runs from overlapping across instances.
type LockManager interface {
	// Acquire takes the lock or returns ErrLockHeld. The returned release
	// function is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}
