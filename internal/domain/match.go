package domain

import "time"

// RawStatus is the lifecycle status exactly as reported by the upstream match
// feed. The set of values is open: providers add and rename states without
// notice, so RawStatus is never switched on exhaustively. Harmonisation into
// the closed MatchStatus enum happens in the lifecycle package.
type RawStatus string

// Raw statuses observed from the feed. Unknown values are handled gracefully
// by the lifecycle resolver, these constants only cover the documented set.
const (
	RawScheduled RawStatus = "SCHEDULED"
	RawTimed     RawStatus = "TIMED"
	RawOpen      RawStatus = "OPEN"
	RawLive      RawStatus = "LIVE"
	RawInPlay    RawStatus = "IN_PLAY"
	RawPaused    RawStatus = "PAUSED"
	RawSuspended RawStatus = "SUSPENDED"
	RawFinished  RawStatus = "FINISHED"
	RawSettled   RawStatus = "SETTLED"
	RawPostponed RawStatus = "POSTPONED"
	RawCancelled RawStatus = "CANCELLED"
)

// Odds is the decimal odds triple for a 1X2 market.
type Odds struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Score is a live or final scoreline.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// MatchSummary is a single match as delivered by the upstream feed. It is
// read-only input for the engine: derived values (harmonized status, badges,
// countdowns) are recomputed from it on every evaluation and never written
// back.
type MatchSummary struct {
	ID          string    `json:"id"`
	LeagueID    string    `json:"leagueId"`
	LeagueName  string    `json:"leagueName"`
	HomeTeam    string    `json:"homeTeam"`
	AwayTeam    string    `json:"awayTeam"`
	StartTime   time.Time `json:"startTime"`
	RawStatus   RawStatus `json:"rawStatus"`
	Odds        Odds      `json:"odds"`
	Predictions int       `json:"predictions"`
	Score       *Score    `json:"score,omitempty"`
	Minute      *int      `json:"minute,omitempty"`
}

// Started reports whether the match has kicked off relative to now.
func (m MatchSummary) Started(now time.Time) bool {
	return !now.Before(m.StartTime)
}

// AgentStanding is one row of the agent leaderboard.
type AgentStanding struct {
	AgentID     string    `json:"agentId"`
	Name        string    `json:"name"`
	Rank        int       `json:"rank"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Pushes      int       `json:"pushes"`
	ROI         float64   `json:"roi"`
	Streak      int       `json:"streak"`
	LastSettled time.Time `json:"lastSettled"`
}
