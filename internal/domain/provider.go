package domain

import "context"

// MatchProvider is the upstream match-data collaborator. Dates passed to
// FetchMatches are UTC calendar dates in YYYY-MM-DD form, both bounds
// inclusive. A failed fetch means "no update this tick", never "entity gone":
// callers keep whatever data they already hold.
type MatchProvider interface {
	FetchMatches(ctx context.Context, fromDate, toDate string) ([]MatchSummary, error)
	FetchMatch(ctx context.Context, id string) (MatchSummary, error)
}

// LeaderboardProvider serves the agent leaderboard.
type LeaderboardProvider interface {
	FetchLeaderboard(ctx context.Context) ([]AgentStanding, error)
}
