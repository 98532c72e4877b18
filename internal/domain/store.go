package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// MatchSnapshot is the persisted record of a match that reached a terminal
// status, written by the archive pipeline. Unlike MatchSummary it is owned by
// this service, not by the upstream feed.
type MatchSnapshot struct {
	MatchID     string
	LeagueID    string
	LeagueName  string
	HomeTeam    string
	AwayTeam    string
	StartTime   time.Time
	FinalStatus MatchStatus
	HomeScore   *int
	AwayScore   *int
	Odds        Odds
	Predictions int
	ArchivedAt  time.Time
}

// SnapshotStore persists terminal-status match snapshots.
type SnapshotStore interface {
	UpsertBatch(ctx context.Context, snaps []MatchSnapshot) error
	ListByWeek(ctx context.Context, from, to time.Time) ([]MatchSnapshot, error)
	Count(ctx context.Context) (int64, error)
}

// StandingsRecord is one archived leaderboard row together with the week it
// was recorded for.
type StandingsRecord struct {
	ISOWeek    string
	Standing   AgentStanding
	RecordedAt time.Time
}

// StandingsStore persists weekly leaderboard history.
type StandingsStore interface {
	InsertWeek(ctx context.Context, isoWeek string, standings []AgentStanding) error
	ListWeek(ctx context.Context, isoWeek string) ([]StandingsRecord, error)
}
